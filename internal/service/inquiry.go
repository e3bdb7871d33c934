package service

import (
	"fmt"

	"bondflow/internal/model"
	"bondflow/logger"
)

// Quoter is the external quote loop attached to the inquiry ledger. It is
// handed each freshly received inquiry and is expected to answer with
// Quote (or leave the inquiry parked in RECEIVED).
type Quoter interface {
	QuoteInquiry(inq model.Inquiry)
}

// SelfQuoter answers every inquiry at its own submitted price, driving the
// RECEIVED -> QUOTED -> DONE cycle without operator input.
type SelfQuoter struct {
	Ledger *InquiryLedger
}

func (q SelfQuoter) QuoteInquiry(inq model.Inquiry) {
	// Errors cannot occur here: the inquiry was stored just before the
	// ledger invoked us.
	_ = q.Ledger.Quote(inq.InquiryID, inq.Price)
}

// InquiryLedger is the customer inquiry state machine, keyed by inquiry id.
// RECEIVED -> QUOTED -> DONE is the only automatic path; the reject states
// are reachable only through explicit calls and are terminal.
type InquiryLedger struct {
	*Store[model.Inquiry]
	quoter Quoter
	log    *logger.Log
}

// NewInquiryLedger constructs the inquiry service.
func NewInquiryLedger() *InquiryLedger {
	return &InquiryLedger{
		Store: NewStore("INQUIRY", func(inq model.Inquiry) string { return inq.InquiryID }),
		log:   logger.GetLogger(),
	}
}

// SetQuoter attaches the external quote loop invoked for each RECEIVED
// inquiry.
func (s *InquiryLedger) SetQuoter(q Quoter) { s.quoter = q }

// Ingest advances the state machine. A RECEIVED inquiry is stored and handed
// to the quote loop; a QUOTED inquiry completes to DONE and fans out.
// Terminal states never regress.
func (s *InquiryLedger) Ingest(inq model.Inquiry) {
	switch inq.State {
	case model.Received:
		s.put(inq)
		if s.quoter != nil {
			s.quoter.QuoteInquiry(inq)
		}
	case model.Quoted:
		inq.State = model.Done
		s.put(inq)
		s.notify(inq)
	default:
		s.log.WithComponent("inquiry").WithFields(logger.Fields{
			"inquiry_id": inq.InquiryID,
			"state":      inq.State.String(),
		}).Debug("ignoring ingestion in terminal state")
	}
}

// Quote stores the responded price and re-ingests the inquiry as QUOTED.
func (s *InquiryLedger) Quote(inquiryID string, price float64) error {
	inq, ok := s.Lookup(inquiryID)
	if !ok {
		return fmt.Errorf("inquiry ledger: no inquiry %s", inquiryID)
	}
	if inq.State != model.Received {
		return fmt.Errorf("inquiry ledger: %s is %s, cannot quote", inquiryID, inq.State)
	}
	inq.Price = price
	inq.State = model.Quoted
	s.Ingest(inq)
	return nil
}

// Reject moves a non-terminal inquiry to REJECTED.
func (s *InquiryLedger) Reject(inquiryID string) error {
	return s.terminate(inquiryID, model.Rejected)
}

// CustomerReject moves a non-terminal inquiry to CUSTOMER_REJECTED.
func (s *InquiryLedger) CustomerReject(inquiryID string) error {
	return s.terminate(inquiryID, model.CustomerRejected)
}

func (s *InquiryLedger) terminate(inquiryID string, state model.InquiryState) error {
	inq, ok := s.Lookup(inquiryID)
	if !ok {
		return fmt.Errorf("inquiry ledger: no inquiry %s", inquiryID)
	}
	switch inq.State {
	case model.Done, model.Rejected, model.CustomerRejected:
		return fmt.Errorf("inquiry ledger: %s already %s", inquiryID, inq.State)
	}
	inq.State = state
	s.put(inq)
	return nil
}
