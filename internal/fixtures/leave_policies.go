package fixtures

import "github.com/cmlabs-hris/hrm-backend-go/internal/domain/leave"

// DefaultLeavePolicies returns the standard entitlements based on Indonesian labor law.
// MaxDaysPerYear of zero means the type is not quota-limited.
func DefaultLeavePolicies() []leave.Policy {
	return []leave.Policy{
		// Cuti Tahunan: 12 days per year
		{
			LeaveType:            leave.TypeAnnual,
			MaxDaysPerYear:       12,
			MaxDaysPerRequest:    12,
			MinAdvanceNoticeDays: 3,
			CarryOverDays:        6,
		},
		// Cuti Sakit: no quota, doctor's note handled outside the system
		{
			LeaveType: leave.TypeSick,
		},
		{
			LeaveType:            leave.TypePersonal,
			MaxDaysPerYear:       3,
			MaxDaysPerRequest:    3,
			MinAdvanceNoticeDays: 7,
		},
		// Cuti Melahirkan: 3 months
		{
			LeaveType:            leave.TypeMaternity,
			MaxDaysPerYear:       90,
			MaxDaysPerRequest:    90,
			MinAdvanceNoticeDays: 14,
		},
		{
			LeaveType:         leave.TypePaternity,
			MaxDaysPerYear:    2,
			MaxDaysPerRequest: 2,
		},
		{
			LeaveType:            leave.TypeUnpaid,
			MaxDaysPerRequest:    30,
			MinAdvanceNoticeDays: 7,
		},
	}
}
