package models

import "time"

// Role labels the authorization role of a CareLink user.
// Roles gate which dashboards and collections a user may read.
type Role string

const (
	RoleMother Role = "mother"
	RoleASHA   Role = "asha"
	RoleDoctor Role = "doctor"
	RoleAdmin  Role = "admin"
)

// RiskLevel is the backend-computed risk classification of a patient.
// The client never computes risk; it only renders and filters by it.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
)

// Patient is the read model of a registered mother or child.
type Patient struct {
	// ID is the backend-assigned patient identifier.
	ID string `json:"id"`

	// Name is the patient's display name.
	Name string `json:"name"`

	// Risk is the backend's current risk classification.
	Risk RiskLevel `json:"risk"`

	// AssignedWorker is the user ID of the ASHA worker responsible
	// for this patient, empty if unassigned.
	AssignedWorker string `json:"assigned_worker,omitempty"`

	// RegisteredAt is when the registration form was accepted.
	RegisteredAt time.Time `json:"registered_at"`

	// LastAssessment is when the most recent assessment was recorded,
	// zero if none exists yet.
	LastAssessment time.Time `json:"last_assessment,omitzero"`
}

// DocumentStatus tracks a document through the backend analysis pipeline.
type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "pending"
	DocumentAnalyzed DocumentStatus = "analyzed"
	DocumentRejected DocumentStatus = "rejected"
)

// DocumentRecord is the read model of an uploaded medical document.
type DocumentRecord struct {
	// ID is the backend-assigned document identifier.
	ID string `json:"id"`

	// PatientID is the patient the document belongs to.
	PatientID string `json:"patient_id"`

	// FileName is the original upload name.
	FileName string `json:"file_name"`

	// Status reports where the document sits in the analysis pipeline.
	Status DocumentStatus `json:"status"`

	// Summary is the backend's extracted summary, present once analyzed.
	Summary string `json:"summary,omitempty"`

	// UploadedAt is when the backend received the document.
	UploadedAt time.Time `json:"uploaded_at"`
}

// ApprovalStatus is the lifecycle state of a pending user approval.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// ApprovalRequest is the read model of a user awaiting admin approval.
type ApprovalRequest struct {
	// ID is the backend-assigned request identifier.
	ID string `json:"id"`

	// UserName is the display name of the applicant.
	UserName string `json:"user_name"`

	// Requested is the role the applicant asked for.
	Requested Role `json:"requested_role"`

	// Status is the current decision state.
	Status ApprovalStatus `json:"status"`

	// CreatedAt is when the applicant registered.
	CreatedAt time.Time `json:"created_at"`
}

// ChatReply is the assistant's answer to a delivered chat message.
type ChatReply struct {
	// ConversationID matches the conversation of the question.
	ConversationID string `json:"conversation_id"`

	// Text is the assistant's answer.
	Text string `json:"text"`

	// CreatedAt is when the backend produced the answer.
	CreatedAt time.Time `json:"created_at"`
}
