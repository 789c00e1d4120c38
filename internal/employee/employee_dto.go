package employee

// UpdateEmployeeRequest is a partial update; nil fields are left untouched.
type UpdateEmployeeRequest struct {
	Name           *string `json:"name" binding:"omitempty,min=1,max=100"`
	Email          *string `json:"email" binding:"omitempty,email"`
	Password       *string `json:"password" binding:"omitempty,min=6,max=72"`
	Role           *string `json:"role" binding:"omitempty,oneof=employee manager admin"`
	Department     *string `json:"department" binding:"omitempty,min=1"`
	Position       *string `json:"position" binding:"omitempty,min=1"`
	JoiningDate    *string `json:"joiningDate" binding:"omitempty,datetime=2006-01-02"`
	ContactNumber  *string `json:"contactNumber" binding:"omitempty,min=1"`
	ProfilePicture *string `json:"profilePicture" binding:"omitempty"`
	LeavesTaken    *int    `json:"leavesTaken" binding:"omitempty,min=0"`
	FunTaskPoints  *int    `json:"funTaskPoints" binding:"omitempty,min=0"`
}

// touchesPrivileged reports fields only an admin may change.
func (r UpdateEmployeeRequest) touchesPrivileged() bool {
	return r.Role != nil || r.LeavesTaken != nil || r.FunTaskPoints != nil
}

type ListFilter struct {
	Query      string
	Role       string
	Department string
}

type EmployeeResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	Department     string `json:"department"`
	Position       string `json:"position"`
	JoiningDate    string `json:"joiningDate"`
	ContactNumber  string `json:"contactNumber"`
	ProfilePicture string `json:"profilePicture"`
	LeavesTaken    int    `json:"leavesTaken"`
	FunTaskPoints  int    `json:"funTaskPoints"`
	CreatedAt      string `json:"createdAt"`
}

type EmployeeOption struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
