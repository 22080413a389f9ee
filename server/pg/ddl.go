package pg

//DDL statament description
type DDLStmt struct {
	Name string
	Code string
}

func NewDdlStatement(name string, code string) *DDLStmt {
	return &DDLStmt{Name: name, Code: code}
}

//Collection of the DDL statements
type DdlStatementSet []*DDLStmt

//Adds a DDL statement to the colletcion of them
func (ds *DdlStatementSet) Add(s *DDLStmt) {
	*ds = append(*ds, s)
}

//Statement codes in order
func (ds DdlStatementSet) Codes() []string {
	codes := make([]string, 0, len(ds))
	for _, statement := range ds {
		codes = append(codes, statement.Code)
	}
	return codes
}
