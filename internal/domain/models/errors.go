package models

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies failures inside the cascade.
type ErrorKind string

const (
	KindFetchExhausted       ErrorKind = "FETCH_EXHAUSTED"
	KindMalformedResponse    ErrorKind = "MALFORMED_RESPONSE"
	KindEmptySeries          ErrorKind = "EMPTY_SERIES"
	KindInsufficientData     ErrorKind = "INSUFFICIENT_DATA"
	KindUnsupportedAssetType ErrorKind = "UNSUPPORTED_ASSET_TYPE"
	KindUpstream             ErrorKind = "UPSTREAM"
	KindCanceled             ErrorKind = "CANCELED"
	KindUnknown              ErrorKind = "UNKNOWN"
)

// ErrEmptySeries is returned when normalization leaves no usable bar.
var ErrEmptySeries = errors.New("empty series: no usable price points")

// FetchExhaustedError reports that every relay failed for one logical request.
type FetchExhaustedError struct {
	Symbol string
	Tried  int
	Last   error
}

func (e *FetchExhaustedError) Error() string {
	if e.Last != nil {
		return fmt.Sprintf("fetch exhausted for %s after %d relays: %v", e.Symbol, e.Tried, e.Last)
	}
	return fmt.Sprintf("fetch exhausted for %s after %d relays", e.Symbol, e.Tried)
}

func (e *FetchExhaustedError) Unwrap() error { return e.Last }

// MalformedResponseError reports a parseable body that lacks expected fields
// or carries a provider-reported error.
type MalformedResponseError struct {
	Source string
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed %s response: %s", e.Source, e.Reason)
}

// InsufficientDataError reports fewer bars than an analysis window requires.
type InsufficientDataError struct {
	Have int
	Need int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: have %d bars, need %d", e.Have, e.Need)
}

// UnsupportedAssetTypeError reports a spot lookup for an asset class with no provider.
type UnsupportedAssetTypeError struct {
	Symbol string
	Class  AssetClass
}

func (e *UnsupportedAssetTypeError) Error() string {
	return fmt.Sprintf("no price provider for %s (%s)", e.Symbol, e.Class)
}

// UpstreamError reports a non-success answer from the primary service.
type UpstreamError struct {
	Service string
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s returned status %d: %s", e.Service, e.Status, e.Message)
	}
	return fmt.Sprintf("%s returned status %d", e.Service, e.Status)
}

// CascadeError is the terminal failure of the cascade. Err is the last tier's
// error, untouched; Attempts holds every tier's error message.
type CascadeError struct {
	Tier     Provenance
	Kind     ErrorKind
	Err      error
	Attempts map[Provenance]string
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("all tiers failed, last tier %s (%s): %v", e.Tier, e.Kind, e.Err)
}

func (e *CascadeError) Unwrap() error { return e.Err }

// KindOf maps any (possibly wrapped) error to its ErrorKind.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var (
		fe *FetchExhaustedError
		me *MalformedResponseError
		ie *InsufficientDataError
		ue *UnsupportedAssetTypeError
		up *UpstreamError
		ce *CascadeError
	)
	switch {
	case errors.As(err, &ce):
		return ce.Kind
	case errors.As(err, &fe):
		return KindFetchExhausted
	case errors.As(err, &me):
		return KindMalformedResponse
	case errors.Is(err, ErrEmptySeries):
		return KindEmptySeries
	case errors.As(err, &ie):
		return KindInsufficientData
	case errors.As(err, &ue):
		return KindUnsupportedAssetType
	case errors.As(err, &up):
		return KindUpstream
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindUnknown
	}
}
