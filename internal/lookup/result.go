package lookup

import (
	"github.com/codyseavey/mtg-rules-bot/internal/models"
)

// Kind tags the variant held by a Result.
type Kind string

const (
	KindFound              Kind = "found"
	KindNotFound           Kind = "not_found"
	KindAmbiguousSet       Kind = "ambiguous_set"
	KindServiceUnavailable Kind = "service_unavailable"
	KindInvalidInput       Kind = "invalid_input"
)

// LookupRequest is the parsed form of one incoming command.
type LookupRequest struct {
	RawText       string `json:"raw_text"`
	CardName      string `json:"card_name"`
	SetIdentifier string `json:"set_identifier,omitempty"` // empty when no set was given
}

// HasSet reports whether a set qualifier was parsed out of the command.
func (r LookupRequest) HasSet() bool {
	return r.SetIdentifier != ""
}

// Result is the terminal outcome of resolving a LookupRequest.
//
// Card is set only for KindFound, Candidates only for KindAmbiguousSet and
// Err only for KindServiceUnavailable. CanonicalName is the catalog's name
// for the card whenever one was resolved.
type Result struct {
	Kind          Kind            `json:"kind"`
	Request       LookupRequest   `json:"request"`
	LookupKey     string          `json:"lookup_key,omitempty"`
	CanonicalName string          `json:"canonical_name,omitempty"`
	Card          *models.Card    `json:"card,omitempty"`
	Candidates    []models.SetRef `json:"candidates,omitempty"`
	Err           error           `json:"-"`
}

func found(req LookupRequest, card models.Card) Result {
	return Result{Kind: KindFound, Request: req, CanonicalName: card.Name, Card: &card}
}

func notFound(req LookupRequest) Result {
	return Result{Kind: KindNotFound, Request: req}
}

func unavailable(req LookupRequest, err error) Result {
	return Result{Kind: KindServiceUnavailable, Request: req, Err: err}
}

func invalidInput(req LookupRequest) Result {
	return Result{Kind: KindInvalidInput, Request: req}
}

func ambiguousSet(req LookupRequest, name string, sets []models.SetRef) Result {
	return Result{Kind: KindAmbiguousSet, Request: req, CanonicalName: name, Candidates: sets}
}
