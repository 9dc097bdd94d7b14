// Package lifecycle holds the status vocabularies of each document type and
// the lineage rules that tie quotations, contracts and installations together.
package lifecycle

import (
	"fmt"
	"strings"

	"github.com/HanjuJo/nexo-v1/internal/apierror"

	"github.com/google/uuid"
)

// Document names a document type with its own status vocabulary.
type Document string

const (
	DocQuotation    Document = "quotation"
	DocContract     Document = "contract"
	DocInstallation Document = "installation"
)

// Quotation statuses.
const (
	QuotationDraft     = "draft"
	QuotationSubmitted = "submitted"
	QuotationApproved  = "approved"
	QuotationRejected  = "rejected"
	QuotationExpired   = "expired"
)

// Contract statuses.
const (
	ContractDraft      = "draft"
	ContractSigned     = "signed"
	ContractInProgress = "in_progress"
	ContractCompleted  = "completed"
	ContractCancelled  = "cancelled"
)

// Installation statuses.
const (
	InstallationPending    = "pending"
	InstallationInProgress = "in_progress"
	InstallationCompleted  = "completed"
	InstallationCancelled  = "cancelled"
)

// Installation kinds.
const (
	KindInstallation = "installation"
	KindServiceVisit = "service_visit"
)

// The first entry of each list is the default status on creation.
var statuses = map[Document][]string{
	DocQuotation:    {QuotationDraft, QuotationSubmitted, QuotationApproved, QuotationRejected, QuotationExpired},
	DocContract:     {ContractDraft, ContractSigned, ContractInProgress, ContractCompleted, ContractCancelled},
	DocInstallation: {InstallationPending, InstallationInProgress, InstallationCompleted, InstallationCancelled},
}

// Statuses returns the status vocabulary of doc.
func Statuses(doc Document) []string {
	return append([]string(nil), statuses[doc]...)
}

// DefaultStatus is the status a new document of type doc starts in.
func DefaultStatus(doc Document) string {
	return statuses[doc][0]
}

// ValidateStatus accepts any status of doc's vocabulary. No transition table
// applies: any enumerated status may follow any other.
func ValidateStatus(doc Document, status string) error {
	for _, s := range statuses[doc] {
		if s == status {
			return nil
		}
	}
	return apierror.Validation(
		fmt.Sprintf("invalid %s status %q", doc, status),
		map[string]string{"status": "oneof=" + strings.Join(statuses[doc], " ")},
	)
}

// StatusOrDefault returns status, or doc's default when status is empty,
// after checking it belongs to the vocabulary.
func StatusOrDefault(doc Document, status string) (string, error) {
	if status == "" {
		return DefaultStatus(doc), nil
	}
	if err := ValidateStatus(doc, status); err != nil {
		return "", err
	}
	return status, nil
}

// ValidateKind checks an installation kind.
func ValidateKind(kind string) error {
	if kind == KindInstallation || kind == KindServiceVisit {
		return nil
	}
	return apierror.Validation(
		fmt.Sprintf("invalid installation type %q", kind),
		map[string]string{"installation_type": "oneof=installation service_visit"},
	)
}

// KeepLineage enforces immutability of a derivation reference. A nil update
// keeps current; an update equal to current is a no-op; anything else fails.
func KeepLineage(field string, current, update *uuid.UUID) (*uuid.UUID, error) {
	if update == nil {
		return current, nil
	}
	if current != nil && *current == *update {
		return current, nil
	}
	return nil, apierror.Validation(
		field+" cannot be changed after creation",
		map[string]string{field: "immutable"},
	)
}
