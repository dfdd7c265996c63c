package model

// FieldCategory is a named group of columns used for coarse-grained access
// control. The scope resolver grants categories; readers and the aggregation
// engine check them before touching the underlying rows.
type FieldCategory string

const (
	FieldProfile     FieldCategory = "profile"
	FieldAttendance  FieldCategory = "attendance"
	FieldSubmissions FieldCategory = "submissions"
	FieldWellbeing   FieldCategory = "wellbeing"
)

// Scope is the visibility set a resolved identity may read or export:
// which students, which courses, which field categories. AllStudents and
// AllCourses short-circuit the id lists.
//
// Dashboards gates the aggregation engine's analytics operations; it is a
// functional restriction (the Wellbeing Team sees all raw data but may not
// run dashboards), distinct from data visibility.
type Scope struct {
	Role        UserRole        `json:"role"`
	AllStudents bool            `json:"allStudents"`
	StudentIDs  []int64         `json:"studentIds,omitempty"`
	AllCourses  bool            `json:"allCourses"`
	CourseIDs   []uint          `json:"courseIds,omitempty"`
	Fields      []FieldCategory `json:"fields"`
	Dashboards  bool            `json:"dashboards"`
	Export      bool            `json:"export"`
}

func (s Scope) HasField(f FieldCategory) bool {
	for _, c := range s.Fields {
		if c == f {
			return true
		}
	}
	return false
}

func (s Scope) AdmitsStudent(id int64) bool {
	if s.AllStudents {
		return true
	}
	for _, sid := range s.StudentIDs {
		if sid == id {
			return true
		}
	}
	return false
}

func (s Scope) AdmitsCourse(id uint) bool {
	if s.AllCourses {
		return true
	}
	for _, cid := range s.CourseIDs {
		if cid == id {
			return true
		}
	}
	return false
}
