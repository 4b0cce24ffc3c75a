package api

import "time"

// JobRequirement описывает вакансию, под которую оптимизируются документы
type JobRequirement struct {
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	Title           string    `json:"title"`
	Company         string    `json:"company"`
	Description     string    `json:"description"`
	ExperienceLevel string    `json:"experienceLevel"`
	SalaryRange     string    `json:"salaryRange,omitempty"`
	Location        string    `json:"location"`
	JobType         string    `json:"jobType"`
	Requirements    []string  `json:"requirements"`
	Skills          []string  `json:"skills"`
}

// Validate проверяет обязательные поля вакансии
func (j *JobRequirement) Validate() error {
	if err := required("title", j.Title); err != nil {
		return err
	}
	return required("company", j.Company)
}
