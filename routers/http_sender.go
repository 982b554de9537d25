package routers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/lp-gateway/inter"
	"github.com/rony4d/lp-gateway/logger"
)

var ErrRouterNotFound = errors.New("router not found")

// RelayRequest is the body POSTed to a router relay endpoint.
type RelayRequest struct {
	Router  string        `json:"router"`
	Sender  string        `json:"sender"`
	Payload hexutil.Bytes `json:"payload"`
}

// HTTPSender delivers outbound messages to per router relay endpoints. A
// router with a token presents it as a bearer credential.
type HTTPSender struct {
	endpoints map[inter.RouterID]string
	tokens    map[inter.RouterID]string
	client    *http.Client

	Log *logrus.Entry
}

// NewHTTPSender creates a sender posting to endpoints with the given timeout.
func NewHTTPSender(endpoints, tokens map[string]string, timeout time.Duration) *HTTPSender {
	return &HTTPSender{
		endpoints: byRouter(endpoints),
		tokens:    byRouter(tokens),
		client:    &http.Client{Timeout: timeout},
		Log:       logger.New("routers"),
	}
}

// Send implements gateway.MessageSender.
func (s *HTTPSender) Send(router inter.RouterID, sender inter.DomainAddress, payload []byte) error {
	url, ok := s.endpoints[router]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRouterNotFound, router)
	}
	body, err := json.Marshal(RelayRequest{
		Router:  router.String(),
		Sender:  sender.String(),
		Payload: payload,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token := s.tokens[router]; token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("router %s: %w", router, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("router %s: relay returned %d: %s", router, resp.StatusCode, bytes.TrimSpace(msg))
	}
	s.Log.WithFields(logrus.Fields{
		"router": router.String(),
		"bytes":  len(payload),
	}).Debug("Message relayed")
	return nil
}

func byRouter(m map[string]string) map[inter.RouterID]string {
	res := make(map[inter.RouterID]string, len(m))
	for id, v := range m {
		res[inter.RouterID(id)] = v
	}
	return res
}
