package leave

import "go-hrms/internal/domain"

type CreateLeaveRequest struct {
	LeaveType string `json:"leaveType" binding:"required,oneof=sick casual annual maternity paternity unpaid"`
	StartDate string `json:"startDate" binding:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" binding:"required,datetime=2006-01-02"`
	Reason    string `json:"reason" binding:"required,max=1000"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending approved rejected"`
}

type ListFilter struct {
	EmployeeID string
	Status     string
}

type LeaveResponse struct {
	ID           string                  `json:"id"`
	EmployeeID   string                  `json:"employeeId"`
	Employee     *domain.EmployeeSummary `json:"employee,omitempty"`
	LeaveType    string                  `json:"leaveType"`
	StartDate    string                  `json:"startDate"`
	EndDate      string                  `json:"endDate"`
	Days         int                     `json:"days"`
	Reason       string                  `json:"reason"`
	Status       string                  `json:"status"`
	ApprovedByID *string                 `json:"approvedById"`
	ApprovedBy   *domain.EmployeeSummary `json:"approvedBy,omitempty"`
	CreatedAt    string                  `json:"createdAt"`
	UpdatedAt    string                  `json:"updatedAt"`
}
