package models

import "time"

/************************************************
/**** MARK: PROJECT STATUS ****/
/************************************************/
const PROJECT_STATUS_DRAFT = "draft"
const PROJECT_STATUS_IN_PROGRESS = "in_progress"
const PROJECT_STATUS_REVIEW = "review"
const PROJECT_STATUS_SUBMITTED = "submitted"
const PROJECT_STATUS_GRANTED = "granted"
const PROJECT_STATUS_REJECTED = "rejected"

var projectTransitions = map[string][]string{
	PROJECT_STATUS_DRAFT:       {PROJECT_STATUS_IN_PROGRESS},
	PROJECT_STATUS_IN_PROGRESS: {PROJECT_STATUS_REVIEW, PROJECT_STATUS_DRAFT},
	PROJECT_STATUS_REVIEW:      {PROJECT_STATUS_IN_PROGRESS, PROJECT_STATUS_SUBMITTED},
	PROJECT_STATUS_SUBMITTED:   {PROJECT_STATUS_GRANTED, PROJECT_STATUS_REJECTED},
}

// Project representa uma solicitação de subvenção de um cliente para uma convocatoria.
// Os relatórios gerados pela IA ficam serializados (JSON) no próprio registro.
type Project struct {
	ID                  int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	OrganizationID      int64      `gorm:"not null;index" json:"organization_id"`
	ClientID            int64      `gorm:"not null;index" json:"client_id" form:"client_id"`
	Name                string     `gorm:"not null" json:"name" form:"name"`
	CallName            string     `gorm:"column:call_name;default:''" json:"call_name" form:"call_name"`
	FundingBody         string     `gorm:"column:funding_body;default:''" json:"funding_body" form:"funding_body"`
	Deadline            *time.Time `json:"deadline" form:"deadline"`
	RequestedAmount     float64    `gorm:"not null;default:0" json:"requested_amount" form:"requested_amount"`
	Status              string     `gorm:"not null;default:'draft';index" json:"status"`
	WritingInstructions string     `gorm:"type:text" json:"writing_instructions" form:"writing_instructions"`
	ViabilityReport     string     `gorm:"type:text" json:"viability_report"`
	ViabilityScore      *int       `json:"viability_score"`
	ReviewReport        string     `gorm:"type:text" json:"review_report"`
	Summary             string     `gorm:"type:text" json:"summary"`
	CreatedBy           int64      `gorm:"not null;default:0" json:"created_by"`
	CreatedAt           *time.Time `json:"created_at"`
	UpdatedAt           *time.Time `json:"updated_at"`
}

func (project Project) MissingFields() string {
	if project.Name == "" {
		return "name"
	} else if project.ClientID == 0 {
		return "client_id"
	}
	return ""
}

// CanTransition reports whether a project may move from one status to another.
func CanTransition(from, to string) bool {
	for _, s := range projectTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
