package memory

import (
	"context"
	"sort"
	"time"

	"github.com/srgjo27/ticketflow/internal/core/domain"
	"github.com/srgjo27/ticketflow/internal/core/ports"
)

// view implements ports.Queries over one state. Inside a transaction reads
// and writes are tracked for commit validation; every write also counts as a
// read so two writers of the same key cannot both commit.
type view struct {
	st     *state
	reads  map[string]uint64
	writes map[string]struct{}
}

func eventKey(id string) string { return "event:" + id }
func ticketKey(id string) string { return "ticket:" + id }
func pendingKey(id string) string { return "pending:" + id }
func failedKey(id string) string { return "failed:" + id }

// Predicate keys guard query results rather than single records.
func activeKey(userID, eventID string) string { return "active:" + userID + "|" + eventID }
func numberKey(number string) string { return "tnum:" + number }
func intentKey(paymentIntentID string) string { return "tpi:" + paymentIntentID }
func failedIntentKey(id string) string { return "fpi:" + id }

func (v *view) read(key string) {
	if v.reads == nil {
		return
	}
	if _, ok := v.writes[key]; ok {
		return
	}
	if _, ok := v.reads[key]; !ok {
		v.reads[key] = v.st.rev[key]
	}
}

func (v *view) write(key string) {
	v.read(key)
	v.st.rev[key]++
	if v.writes != nil {
		v.writes[key] = struct{}{}
	}
}

func (v *view) GetEvent(_ context.Context, eventID string) (*domain.Event, error) {
	v.read(eventKey(eventID))

	e, ok := v.st.events[eventID]
	if !ok {
		return nil, ports.ErrNotFound
	}

	return &e, nil
}

func (v *view) UpdateEventTicketsSold(_ context.Context, eventID string, ticketsSold int, expectedVersion int) error {
	v.read(eventKey(eventID))

	e, ok := v.st.events[eventID]
	if !ok {
		return ports.ErrNotFound
	}

	if e.Version != expectedVersion || ticketsSold < 0 || ticketsSold > e.MaxTickets {
		return ports.ErrConflict
	}

	e.TicketsSold = ticketsSold
	e.Version++
	v.st.events[eventID] = e
	v.write(eventKey(eventID))

	return nil
}

func (v *view) HasActiveTicket(_ context.Context, userID, eventID string) (bool, error) {
	v.read(activeKey(userID, eventID))

	for _, t := range v.st.tickets {
		if t.UserID == userID && t.EventID == eventID && t.IsActive() {
			return true, nil
		}
	}

	return false, nil
}

func (v *view) CreateTicket(_ context.Context, ticket *domain.Ticket) error {
	v.read(ticketKey(ticket.ID))
	v.read(numberKey(ticket.TicketNumber))

	if _, exists := v.st.tickets[ticket.ID]; exists {
		return ports.ErrConflict
	}
	for _, t := range v.st.tickets {
		if t.TicketNumber == ticket.TicketNumber {
			return ports.ErrConflict
		}
	}

	v.st.tickets[ticket.ID] = *ticket
	v.write(ticketKey(ticket.ID))
	v.write(numberKey(ticket.TicketNumber))
	v.write(activeKey(ticket.UserID, ticket.EventID))
	if ticket.PaymentIntentID != "" {
		v.write(intentKey(ticket.PaymentIntentID))
	}

	return nil
}

func (v *view) GetTicket(_ context.Context, ticketID string) (*domain.Ticket, error) {
	v.read(ticketKey(ticketID))

	t, ok := v.st.tickets[ticketID]
	if !ok {
		return nil, ports.ErrNotFound
	}

	return &t, nil
}

func (v *view) GetTicketByNumber(_ context.Context, ticketNumber string) (*domain.Ticket, error) {
	v.read(numberKey(ticketNumber))

	for _, t := range v.st.tickets {
		if t.TicketNumber == ticketNumber {
			v.read(ticketKey(t.ID))
			return &t, nil
		}
	}

	return nil, ports.ErrNotFound
}

func (v *view) GetTicketByPaymentIntent(_ context.Context, paymentIntentID string) (*domain.Ticket, error) {
	v.read(intentKey(paymentIntentID))

	for _, t := range v.st.tickets {
		if t.PaymentIntentID == paymentIntentID {
			v.read(ticketKey(t.ID))
			return &t, nil
		}
	}

	return nil, ports.ErrNotFound
}

func (v *view) MarkTicketUsed(_ context.Context, ticketID, scannedBy string, usedAt time.Time, expectedVersion int) error {
	v.read(ticketKey(ticketID))

	t, ok := v.st.tickets[ticketID]
	if !ok {
		return ports.ErrNotFound
	}

	if t.Version != expectedVersion || t.Status != domain.TicketConfirmed {
		return ports.ErrConflict
	}

	at := usedAt
	t.Status = domain.TicketUsed
	t.UsedAt = &at
	t.ScannedBy = scannedBy
	t.Version++
	v.st.tickets[ticketID] = t
	v.write(ticketKey(ticketID))

	return nil
}

func (v *view) CreatePendingPayment(_ context.Context, p *domain.PendingPayment) error {
	v.read(pendingKey(p.ID))

	if _, exists := v.st.pending[p.ID]; exists {
		return ports.ErrConflict
	}

	v.st.pending[p.ID] = *p
	v.write(pendingKey(p.ID))

	return nil
}

func (v *view) GetPendingPayment(_ context.Context, paymentIntentID string) (*domain.PendingPayment, error) {
	v.read(pendingKey(paymentIntentID))

	p, ok := v.st.pending[paymentIntentID]
	if !ok {
		return nil, ports.ErrNotFound
	}

	return &p, nil
}

func (v *view) ClaimPendingPayment(_ context.Context, paymentIntentID string) error {
	v.read(pendingKey(paymentIntentID))

	p, ok := v.st.pending[paymentIntentID]
	if !ok || p.Status != domain.PendingAwaiting {
		return ports.ErrConflict
	}

	p.Status = domain.PendingCompleted
	v.st.pending[paymentIntentID] = p
	v.write(pendingKey(paymentIntentID))

	return nil
}

func (v *view) DeletePendingPayment(_ context.Context, paymentIntentID string) error {
	v.read(pendingKey(paymentIntentID))

	if _, ok := v.st.pending[paymentIntentID]; !ok {
		return ports.ErrNotFound
	}

	delete(v.st.pending, paymentIntentID)
	v.write(pendingKey(paymentIntentID))

	return nil
}

func (v *view) CreateFailedPurchase(_ context.Context, fp *domain.FailedPurchase) error {
	if _, exists := v.st.failed[fp.ID]; exists {
		return ports.ErrConflict
	}

	v.st.failed[fp.ID] = *fp
	v.write(failedKey(fp.ID))
	v.write(failedIntentKey(fp.PaymentIntentID))

	return nil
}

func (v *view) UpdateFailedPurchase(_ context.Context, id string, status domain.FailedPurchaseStatus, refundID string) error {
	fp, ok := v.st.failed[id]
	if !ok {
		return ports.ErrNotFound
	}

	fp.Status = status
	if refundID != "" {
		fp.RefundID = refundID
	}
	fp.UpdatedAt = time.Now().UTC()
	v.st.failed[id] = fp
	v.write(failedKey(id))

	return nil
}

func (v *view) HasFailedPurchase(_ context.Context, paymentIntentID string) (bool, error) {
	v.read(failedIntentKey(paymentIntentID))

	for _, fp := range v.st.failed {
		if fp.PaymentIntentID == paymentIntentID {
			return true, nil
		}
	}

	return false, nil
}

func (v *view) getUser(uid string) (*domain.UserProfile, error) {
	u, ok := v.st.users[uid]
	if !ok {
		return nil, ports.ErrNotFound
	}

	return &u, nil
}

func (v *view) listScanLogs(filter domain.ScanFilter) []domain.ScanLog {
	filter.Normalize()

	out := make([]domain.ScanLog, 0)
	for i := range v.st.scanLogs {
		if filter.Matches(&v.st.scanLogs[i]) {
			out = append(out, v.st.scanLogs[i])
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ScannedAt.After(out[j].ScannedAt)
	})

	if len(out) > filter.Limit {
		out = out[:filter.Limit]
	}

	return out
}
