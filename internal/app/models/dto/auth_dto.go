package dto

import "github.com/yigit/printq/internal/app/models"

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"jdoe@campus.edu"`
	Password string `json:"password" binding:"required" example:"s3cret-pass"`
	// UserType restricts the lookup to one collection. Empty tries admins then students.
	UserType models.RoleType `json:"userType,omitempty" binding:"omitempty,oneof=student admin" example:"student"`
}

// RegisterStudentRequest represents a student sign-up
type RegisterStudentRequest struct {
	Username      string `json:"username" binding:"required,username" example:"jdoe"`
	Email         string `json:"email" binding:"required,email,max=255" example:"jdoe@campus.edu"`
	StudentNumber string `json:"studentNumber" binding:"required,student_number" example:"20231234"`
	Password      string `json:"password" binding:"required,min=8,max=72" example:"s3cret-pass"`
}

// RegisterAdminRequest represents an administrator sign-up gated by a registration code
type RegisterAdminRequest struct {
	Username         string `json:"username" binding:"required,username" example:"printdesk"`
	Email            string `json:"email" binding:"required,email,max=255" example:"desk@campus.edu"`
	Password         string `json:"password" binding:"required,min=8,max=72" example:"s3cret-pass"`
	RegistrationCode string `json:"registrationCode" binding:"required" example:"PRINTQ2024ADMIN"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType" example:"Bearer"`
	ExpiresIn   int    `json:"expiresIn" example:"86400"`
}

// SubjectInfo is the public view of the authenticated account
type SubjectInfo struct {
	ID       string          `json:"id"`
	Username string          `json:"username" example:"jdoe"`
	Email    string          `json:"email" example:"jdoe@campus.edu"`
	Role     models.RoleType `json:"role" example:"student" enums:"student,admin"`
	Student  *models.Student `json:"student,omitempty"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token TokenResponse `json:"token"`
	User  SubjectInfo   `json:"user"`
}

// RegisterResponse returns the id of the created account
type RegisterResponse struct {
	ID string `json:"id"`
}
