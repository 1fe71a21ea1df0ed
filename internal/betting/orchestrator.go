package betting

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/onit-labs/onit-markets-go/pkg/types"
	"go.uber.org/zap"
)

// State is a phase in a bet submission's lifecycle.
type State string

const (
	StateIdle              State = "idle"
	StateResolvingCalldata State = "resolving-calldata"
	StateAwaitingSignature State = "awaiting-signature"
	StateSubmitted         State = "submitted"
	StateConfirmed         State = "confirmed"
	StateFailed            State = "failed"
)

// FailureReason classifies why a submission ended in StateFailed.
type FailureReason string

const (
	ReasonNone            FailureReason = ""
	ReasonInvalidProposal FailureReason = "invalid-proposal"
	ReasonCalldataError   FailureReason = "calldata-error"
	ReasonSigningRejected FailureReason = "signing-rejected"
)

// ErrSubmissionInFlight is returned when Submit is called while a prior
// Submit on the same submission has not finished.
var ErrSubmissionInFlight = errors.New("submission already in flight")

// ErrProposalChanged is returned when the proposal was replaced while its
// calldata resolution was in flight. The stale result is discarded and the
// submission returns to idle for a fresh attempt.
var ErrProposalChanged = errors.New("proposal changed during resolution, restart from idle")

// ErrNoProposal is returned when Submit is called before SetProposal.
var ErrNoProposal = errors.New("no proposal set")

// CalldataResolver resolves the on-chain call parameters for a proposed bet.
type CalldataResolver interface {
	ResolveCalldata(ctx context.Context, proposal *types.BetProposal) (*types.Calldata, error)
}

// TransactionSubmitter is the external signing collaborator. It signs and
// broadcasts a transaction, returning its identifier. Key material never
// passes through this package.
type TransactionSubmitter interface {
	SubmitTransaction(ctx context.Context, to common.Address, value *big.Int, data []byte) (string, error)
}

// Submission drives one bet attempt through its lifecycle:
//
//	Idle -> ResolvingCalldata -> AwaitingSignature -> Submitted -> Confirmed
//
// with Failed(reason) reachable from every non-terminal state. One instance
// per attempt; a failed attempt is restarted from idle with a fresh calldata
// resolution, never by replaying stale calldata.
type Submission struct {
	id        string
	resolver  CalldataResolver
	submitter TransactionSubmitter
	logger    *zap.Logger

	mu         sync.Mutex
	state      State
	reason     FailureReason
	cause      error
	txID       string
	proposal   *types.BetProposal
	generation uint64
	inFlight   bool
}

// Status is the observable tri-state of a submission: pending (a
// non-terminal State), failed (StateFailed with Reason and Err), or
// succeeded (StateConfirmed with TxID).
type Status struct {
	ID     string
	State  State
	Reason FailureReason
	Err    error
	TxID   string
}

// NewSubmission creates an idle submission for one bet attempt.
func NewSubmission(resolver CalldataResolver, submitter TransactionSubmitter, logger *zap.Logger) *Submission {
	return &Submission{
		id:        uuid.NewString(),
		resolver:  resolver,
		submitter: submitter,
		logger:    logger,
		state:     StateIdle,
	}
}

// ID returns the submission's identifier.
func (s *Submission) ID() string {
	return s.id
}

// SetProposal installs or replaces the proposed bet and resets the machine
// to idle. Replacing the proposal while a resolution is in flight
// invalidates that resolution: its result is discarded on arrival.
func (s *Submission) SetProposal(proposal *types.BetProposal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.proposal = proposal
	s.generation++
	s.state = StateIdle
	s.reason = ReasonNone
	s.cause = nil
	s.txID = ""
}

// Snapshot returns the current observable status.
func (s *Submission) Snapshot() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Status{
		ID:     s.id,
		State:  s.state,
		Reason: s.reason,
		Err:    s.cause,
		TxID:   s.txID,
	}
}

// Submit runs the attempt to a terminal state. It is not reentrant: a second
// call while one is in flight returns ErrSubmissionInFlight and leaves the
// running attempt untouched. Exactly one calldata resolution is performed
// per attempt, and no transition is ever retried automatically.
func (s *Submission) Submit(ctx context.Context) (Status, error) {
	s.mu.Lock()

	if s.inFlight {
		s.mu.Unlock()
		return s.Snapshot(), ErrSubmissionInFlight
	}

	if s.proposal == nil {
		s.mu.Unlock()
		return s.Snapshot(), ErrNoProposal
	}

	proposal := s.proposal
	generation := s.generation

	if err := proposal.Validate(); err != nil {
		s.failLocked(ReasonInvalidProposal, err)
		s.mu.Unlock()
		return s.Snapshot(), err
	}

	s.state = StateResolvingCalldata
	s.inFlight = true
	s.mu.Unlock()

	s.logger.Debug("resolving-calldata",
		zap.String("submission-id", s.id),
		zap.String("market-address", proposal.MarketAddress))

	calldata, err := s.resolver.ResolveCalldata(ctx, proposal)

	s.mu.Lock()

	// The proposal changed while the resolution was in flight. The result
	// is stale for the new proposal and must never be reused.
	if s.generation != generation {
		s.state = StateIdle
		s.inFlight = false
		s.mu.Unlock()

		s.logger.Warn("stale-calldata-discarded",
			zap.String("submission-id", s.id))

		return s.Snapshot(), ErrProposalChanged
	}

	if err != nil {
		s.failLocked(ReasonCalldataError, err)
		s.mu.Unlock()
		return s.Snapshot(), err
	}

	s.state = StateAwaitingSignature
	s.mu.Unlock()

	s.logger.Debug("awaiting-signature",
		zap.String("submission-id", s.id),
		zap.String("to", types.CanonicalAddress(calldata.To)),
		zap.String("value", calldata.Value.String()))

	txID, err := s.submitter.SubmitTransaction(ctx, calldata.To, calldata.Value, calldata.Data)

	s.mu.Lock()

	// The proposal was replaced while the signing phase was in flight. The
	// replacement already reset the machine to idle; this attempt's outcome
	// must not clobber that reset.
	if s.generation != generation {
		s.state = StateIdle
		s.inFlight = false
		s.mu.Unlock()

		s.logger.Warn("stale-submission-discarded",
			zap.String("submission-id", s.id))

		return s.Snapshot(), ErrProposalChanged
	}

	if err != nil {
		// User cancellation and wallet errors are treated identically.
		signingErr := asSigningError(err)

		s.failLocked(ReasonSigningRejected, signingErr)
		s.mu.Unlock()

		return s.Snapshot(), signingErr
	}

	s.state = StateSubmitted
	s.txID = txID

	// Confirmed means accepted for broadcast; on-chain finality tracking
	// belongs to the signing collaborator.
	s.state = StateConfirmed
	s.inFlight = false
	s.mu.Unlock()

	SubmissionsTotal.WithLabelValues(string(StateConfirmed)).Inc()

	s.logger.Info("bet-submitted",
		zap.String("submission-id", s.id),
		zap.String("market-address", proposal.MarketAddress),
		zap.String("tx-id", txID))

	return s.Snapshot(), nil
}

// failLocked moves the machine to StateFailed. Caller holds the mutex.
func (s *Submission) failLocked(reason FailureReason, cause error) {
	s.state = StateFailed
	s.reason = reason
	s.cause = cause
	s.inFlight = false

	SubmissionFailuresTotal.WithLabelValues(string(reason)).Inc()

	s.logger.Warn("submission-failed",
		zap.String("submission-id", s.id),
		zap.String("reason", string(reason)),
		zap.Error(cause))
}

func asSigningError(err error) error {
	var signing *types.SigningError
	if errors.As(err, &signing) {
		return err
	}

	return &types.SigningError{Err: fmt.Errorf("submit transaction: %w", err)}
}
