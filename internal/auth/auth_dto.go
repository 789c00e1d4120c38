package auth

import "go-hrms/internal/employee"

type RegisterRequest struct {
	Name           string `json:"name" binding:"required,max=100"`
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=6,max=72"`
	Role           string `json:"role" binding:"omitempty,oneof=employee manager admin"`
	Department     string `json:"department" binding:"required"`
	Position       string `json:"position" binding:"required"`
	ContactNumber  string `json:"contactNumber" binding:"required"`
	JoiningDate    string `json:"joiningDate" binding:"omitempty,datetime=2006-01-02"`
	ProfilePicture string `json:"profilePicture"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResult struct {
	Token    string
	Employee employee.EmployeeResponse
}
