package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/srgjo27/ticketflow/internal/core/domain"
)

const securityHashLength = 16

type TicketSigner struct {
	secret []byte
}

func NewTicketSigner(secret string) *TicketSigner {
	return &TicketSigner{secret: []byte(secret)}
}

func (s *TicketSigner) Hash(ticketID, eventID, userID string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(ticketID + ":" + eventID + ":" + userID))

	return hex.EncodeToString(mac.Sum(nil))[:securityHashLength]
}

func (s *TicketSigner) Verify(p domain.TicketPayload) bool {
	if len(p.Hash) != securityHashLength {
		return false
	}

	return hmac.Equal([]byte(p.Hash), []byte(s.Hash(p.TicketID, p.EventID, p.UserID)))
}
