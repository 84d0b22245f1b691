package httpapi

import (
	"gigflow/fraud"
	"gigflow/marketplace"
	"gigflow/users"
)

// userResponse is the wire shape for accounts. Password hashes and resume
// text never leave the server.
type userResponse struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Phone    string     `json:"phone,omitempty"`
	Role     users.Role `json:"role"`
	Skills   string     `json:"skills,omitempty"`
	Active   bool       `json:"active"`
	Earnings float64    `json:"earnings"`
}

func toUserResponse(u users.User) userResponse {
	return userResponse{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Phone:    u.Phone,
		Role:     u.Role,
		Skills:   u.Skills,
		Active:   u.Active,
		Earnings: u.Earnings,
	}
}

func toUserResponses(list []users.User) []userResponse {
	out := make([]userResponse, 0, len(list))
	for _, u := range list {
		out = append(out, toUserResponse(u))
	}
	return out
}

// jobResponse is the wire shape for jobs. Price is null until quoted.
type jobResponse struct {
	ID            string             `json:"id"`
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	EstimatedTime string             `json:"estimatedTime"`
	ClientID      string             `json:"clientId"`
	FreelancerID  string             `json:"freelancerId,omitempty"`
	Price         *int               `json:"price"`
	Paid          bool               `json:"paid"`
	Status        marketplace.Status `json:"status"`
}

func toJobResponse(j marketplace.Job) jobResponse {
	return jobResponse{
		ID:            j.ID,
		Title:         j.Title,
		Description:   j.Description,
		EstimatedTime: j.EstimatedTime,
		ClientID:      j.ClientID,
		FreelancerID:  j.FreelancerID,
		Price:         j.Price,
		Paid:          j.Paid,
		Status:        j.Status,
	}
}

func toJobResponses(list []marketplace.Job) []jobResponse {
	out := make([]jobResponse, 0, len(list))
	for _, j := range list {
		out = append(out, toJobResponse(j))
	}
	return out
}

// reportResponse is the wire shape for fraud reports.
type reportResponse struct {
	ID             string             `json:"id"`
	ReporterID     string             `json:"reporterId"`
	ReportedUserID string             `json:"reportedUserId"`
	Description    string             `json:"description"`
	Status         fraud.ReportStatus `json:"status"`
}

func toReportResponses(list []fraud.Report) []reportResponse {
	out := make([]reportResponse, 0, len(list))
	for _, rep := range list {
		out = append(out, reportResponse{
			ID:             rep.ID,
			ReporterID:     rep.ReporterID,
			ReportedUserID: rep.ReportedUserID,
			Description:    rep.Description,
			Status:         rep.Status,
		})
	}
	return out
}
