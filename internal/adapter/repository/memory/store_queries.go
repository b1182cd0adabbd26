package memory

import (
	"context"
	"time"

	"github.com/srgjo27/ticketflow/internal/core/domain"
)

func (s *Store) GetEvent(ctx context.Context, eventID string) (e *domain.Event, err error) {
	err = s.direct(func(v *view) error {
		e, err = v.GetEvent(ctx, eventID)
		return err
	})
	return e, err
}

func (s *Store) UpdateEventTicketsSold(ctx context.Context, eventID string, ticketsSold int, expectedVersion int) error {
	return s.direct(func(v *view) error {
		return v.UpdateEventTicketsSold(ctx, eventID, ticketsSold, expectedVersion)
	})
}

func (s *Store) HasActiveTicket(ctx context.Context, userID, eventID string) (ok bool, err error) {
	err = s.direct(func(v *view) error {
		ok, err = v.HasActiveTicket(ctx, userID, eventID)
		return err
	})
	return ok, err
}

func (s *Store) CreateTicket(ctx context.Context, ticket *domain.Ticket) error {
	return s.direct(func(v *view) error {
		return v.CreateTicket(ctx, ticket)
	})
}

func (s *Store) GetTicket(ctx context.Context, ticketID string) (t *domain.Ticket, err error) {
	err = s.direct(func(v *view) error {
		t, err = v.GetTicket(ctx, ticketID)
		return err
	})
	return t, err
}

func (s *Store) GetTicketByNumber(ctx context.Context, ticketNumber string) (t *domain.Ticket, err error) {
	err = s.direct(func(v *view) error {
		t, err = v.GetTicketByNumber(ctx, ticketNumber)
		return err
	})
	return t, err
}

func (s *Store) GetTicketByPaymentIntent(ctx context.Context, paymentIntentID string) (t *domain.Ticket, err error) {
	err = s.direct(func(v *view) error {
		t, err = v.GetTicketByPaymentIntent(ctx, paymentIntentID)
		return err
	})
	return t, err
}

func (s *Store) MarkTicketUsed(ctx context.Context, ticketID, scannedBy string, usedAt time.Time, expectedVersion int) error {
	return s.direct(func(v *view) error {
		return v.MarkTicketUsed(ctx, ticketID, scannedBy, usedAt, expectedVersion)
	})
}

func (s *Store) CreatePendingPayment(ctx context.Context, p *domain.PendingPayment) error {
	return s.direct(func(v *view) error {
		return v.CreatePendingPayment(ctx, p)
	})
}

func (s *Store) GetPendingPayment(ctx context.Context, paymentIntentID string) (p *domain.PendingPayment, err error) {
	err = s.direct(func(v *view) error {
		p, err = v.GetPendingPayment(ctx, paymentIntentID)
		return err
	})
	return p, err
}

func (s *Store) ClaimPendingPayment(ctx context.Context, paymentIntentID string) error {
	return s.direct(func(v *view) error {
		return v.ClaimPendingPayment(ctx, paymentIntentID)
	})
}

func (s *Store) DeletePendingPayment(ctx context.Context, paymentIntentID string) error {
	return s.direct(func(v *view) error {
		return v.DeletePendingPayment(ctx, paymentIntentID)
	})
}

func (s *Store) CreateFailedPurchase(ctx context.Context, fp *domain.FailedPurchase) error {
	return s.direct(func(v *view) error {
		return v.CreateFailedPurchase(ctx, fp)
	})
}

func (s *Store) UpdateFailedPurchase(ctx context.Context, id string, status domain.FailedPurchaseStatus, refundID string) error {
	return s.direct(func(v *view) error {
		return v.UpdateFailedPurchase(ctx, id, status, refundID)
	})
}

func (s *Store) HasFailedPurchase(ctx context.Context, paymentIntentID string) (ok bool, err error) {
	err = s.direct(func(v *view) error {
		ok, err = v.HasFailedPurchase(ctx, paymentIntentID)
		return err
	})
	return ok, err
}

func (s *Store) GetUser(_ context.Context, uid string) (u *domain.UserProfile, err error) {
	err = s.direct(func(v *view) error {
		u, err = v.getUser(uid)
		return err
	})
	return u, err
}

func (s *Store) SetPaymentCustomerID(_ context.Context, uid, customerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.st.users[uid]
	if !ok {
		u = domain.UserProfile{UID: uid, Role: domain.RoleUser, Active: true}
	}
	u.PaymentCustomerID = customerID
	s.st.users[uid] = u

	return nil
}

func (s *Store) AppendScanLog(_ context.Context, entry *domain.ScanLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.st.scanLogs = append(s.st.scanLogs, *entry)

	return nil
}

func (s *Store) ListScanLogs(_ context.Context, filter domain.ScanFilter) (logs []domain.ScanLog, err error) {
	err = s.direct(func(v *view) error {
		logs = v.listScanLogs(filter)
		return nil
	})
	return logs, err
}
