package ports

import "context"

const (
	TopicTicketIssued   = "ticket.issued"
	TopicTicketScanned  = "ticket.scanned"
	TopicPurchaseRefund = "purchase.refund"
)

type EventPublisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}
