package domain

var Tables = []interface{}{
	// System
	&SysUser{},
	// Network
	&Site{},
	&ProblemReport{},
}
