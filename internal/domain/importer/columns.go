package importer

import "strings"

type Field string

const (
	FieldEmail          Field = "email"
	FieldName           Field = "name"
	FieldDesignation    Field = "designation"
	FieldDepartment     Field = "department"
	FieldJoiningDate    Field = "joining_date"
	FieldEmployeeCode   Field = "employee_code"
	FieldAnnualCost     Field = "annual_cost"
	FieldLocation       Field = "location"
	FieldEmploymentType Field = "employment_type"
)

// AliasTable lists acceptable header spellings per field, highest priority first.
type AliasTable map[Field][]string

// Resolution maps a field to the observed header that carries it.
// Fields with no matching header are absent from the map.
type Resolution map[Field]string

var DefaultAliases = AliasTable{
	FieldEmail:          {"email", "email_id", "email_address"},
	FieldName:           {"name", "full_name", "employee_name", "candidate_name"},
	FieldDesignation:    {"designation", "role", "position", "job_title"},
	FieldDepartment:     {"department", "dept", "domain", "team"},
	FieldJoiningDate:    {"joining_date", "date_of_joining", "doj", "start_date", "joining"},
	FieldEmployeeCode:   {"emp_id", "employee_id", "employee_code", "id"},
	FieldAnnualCost:     {"ctc", "salary", "annual_ctc", "package"},
	FieldLocation:       {"location", "work_location", "city"},
	FieldEmploymentType: {"employment_type", "type", "engagement"},
}

// Normalize lower-cases a header, trims it and joins inner whitespace runs with "_".
func Normalize(header string) string {
	return strings.Join(strings.Fields(strings.ToLower(header)), "_")
}

// Resolve picks, for every field, the first alias that matches a normalized
// observed header. When two headers normalize alike the earlier one wins.
func Resolve(observed []string, table AliasTable) Resolution {
	byNormalized := make(map[string]string, len(observed))
	for _, header := range observed {
		key := Normalize(header)
		if key == "" {
			continue
		}
		if _, seen := byNormalized[key]; !seen {
			byNormalized[key] = header
		}
	}

	out := make(Resolution, len(table))
	for field, aliases := range table {
		for _, alias := range aliases {
			if header, ok := byNormalized[Normalize(alias)]; ok {
				out[field] = header
				break
			}
		}
	}
	return out
}

// Lookup returns the row's cell for field, or an absent cell.
func (r Resolution) Lookup(row Row, field Field) Cell {
	header, ok := r[field]
	if !ok {
		return Absent()
	}
	cell, ok := row[header]
	if !ok {
		return Absent()
	}
	return cell
}
