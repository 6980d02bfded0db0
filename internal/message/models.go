package message

import (
	"avviso/pkg/domain"
)

// Metadata is a message without its content: the routing and lifecycle
// fields stored in the message index. IsPending stays true until the content
// blob has been stored; flipping it to false is what makes the message
// visible to the citizen's inbox.
type Metadata struct {
	ID                domain.MessageID  `json:"id"`
	FiscalCode        domain.FiscalCode `json:"fiscal_code"`
	SenderServiceID   domain.ServiceID  `json:"sender_service_id"`
	SenderUserID      string            `json:"sender_user_id"`
	CreatedAt         int64             `json:"created_at"`
	TimeToLiveSeconds int64             `json:"time_to_live_seconds"`
	IsPending         bool              `json:"is_pending"`
}

// Content is the payload stored as a blob once delivery is admitted.
type Content struct {
	Subject     string       `json:"subject"`
	Markdown    string       `json:"markdown"`
	PaymentData *PaymentData `json:"payment_data,omitempty"`
}

// PaymentData describes a payment request attached to a message. Payee is
// optional on input; when missing it is completed with the sender's
// organization fiscal code before persistence.
type PaymentData struct {
	Amount              int64  `json:"amount"`
	NoticeNumber        string `json:"notice_number"`
	InvalidAfterDueDate bool   `json:"invalid_after_due_date"`
	Payee               *Payee `json:"payee,omitempty"`
}

// Payee identifies the organization collecting a payment.
type Payee struct {
	FiscalCode domain.OrganizationFiscalCode `json:"fiscal_code"`
}

// SenderMetadata describes the service that sent a message, as attached to
// the created-message event by the submission API.
type SenderMetadata struct {
	ServiceName            string                        `json:"service_name"`
	OrganizationName       string                        `json:"organization_name"`
	DepartmentName         string                        `json:"department_name"`
	OrganizationFiscalCode domain.OrganizationFiscalCode `json:"organization_fiscal_code"`
	RequireSecureChannels  bool                          `json:"require_secure_channels"`
	ServiceCategory        domain.ServiceCategory        `json:"service_category,omitempty"`
	ServiceUserEmail       string                        `json:"service_user_email,omitempty"`
}

// IsSpecial reports whether the sender belongs to the restricted category
// that requires an explicit user activation.
func (m SenderMetadata) IsSpecial() bool {
	return m.ServiceCategory == domain.CategorySpecial
}
