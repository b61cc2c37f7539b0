package moadianlib

import "context"

// SubmissionResult is the transport collaborator's acknowledgment for a
// submitted invoice, keyed by the server-issued UID used for later
// status inquiries.
type SubmissionResult struct {
	UID         string `json:"uid"`
	ReferenceID string `json:"reference_id,omitempty"`
	Status      string `json:"status,omitempty"`
}

// Transport is the boundary to the signing and submission collaborator.
// This library guarantees the document it hands over is well-formed and
// internally consistent; signing, encryption, and HTTP belong to the
// implementation behind this interface.
type Transport interface {
	Submit(ctx context.Context, document []byte) (*SubmissionResult, error)
}

// Submit serializes a finished document and hands it to the transport.
func Submit(ctx context.Context, t Transport, doc *InvoiceDocument) (*SubmissionResult, error) {
	payload, err := doc.Encode()
	if err != nil {
		return nil, err
	}
	return t.Submit(ctx, payload)
}
