package integration

import (
	"github.com/sirupsen/logrus"

	"github.com/rony4d/lp-gateway/gateway"
	"github.com/rony4d/lp-gateway/inter"
	"github.com/rony4d/lp-gateway/logger"
)

// LogHandler is the inbound handler of a standalone node. Released messages
// are only logged; consumers follow the gateway's executed events.
type LogHandler struct {
	Log *logrus.Entry
}

var _ gateway.InboundMessageHandler = (*LogHandler)(nil)

func NewLogHandler() *LogHandler {
	return &LogHandler{Log: logger.New("handler")}
}

func (h *LogHandler) Handle(_ gateway.Outbox, sender inter.DomainAddress, msg inter.Message) error {
	h.Log.WithFields(logrus.Fields{
		"sender":      sender.String(),
		"fingerprint": msg.Fingerprint().String(),
		"size":        len(msg.Serialize()),
	}).Info("Inbound message delivered")
	return nil
}
