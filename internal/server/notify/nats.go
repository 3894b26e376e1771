package notify

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/eventhub/internal/logging"
	"github.com/nats-io/nats.go"
)

// SubjectPrefix is prepended to Notice.Kind to form the NATS subject.
const SubjectPrefix = "eventhub."

// publisher is satisfied by *nats.Conn.
type publisher interface {
	Publish(subject string, data []byte) error
}

// NATSNotifier publishes each notice as JSON on SubjectPrefix+Kind.
type NATSNotifier struct {
	conn   publisher
	logger logging.Logger
}

func NewNATSNotifier(conn publisher, l logging.Logger) *NATSNotifier {
	return &NATSNotifier{conn: conn, logger: l.With("module", "nats_notifier")}
}

// ConnectNATS dials url with reconnects enabled.
func ConnectNATS(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("eventhub"),
		nats.MaxReconnects(-1),
	)
}

func (n *NATSNotifier) Notify(ctx context.Context, notice Notice) {
	data, err := json.Marshal(notice)
	if err != nil {
		n.logger.Error(ctx, "encode notice", "kind", notice.Kind, "error", err)
		return
	}
	subject := SubjectPrefix + notice.Kind
	if err := n.conn.Publish(subject, data); err != nil {
		n.logger.Warn(ctx, "publish notice failed", "subject", subject, "error", err)
		return
	}
	n.logger.Debug(ctx, "notice published", "subject", subject)
}
