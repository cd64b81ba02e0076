package model

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"edudirectory_backend/internals/normalize"
)

// StringList is a text[] column on postgres and a JSON text column on
// mysql and sqlite. Scan also accepts legacy comma-joined values.
type StringList []string

func (StringList) GormDataType() string { return "stringlist" }

func (StringList) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

func (l StringList) GormValue(_ context.Context, db *gorm.DB) clause.Expr {
	if l == nil {
		l = StringList{}
	}
	if db.Dialector.Name() == "postgres" {
		v, _ := pq.StringArray(l).Value()
		return clause.Expr{SQL: "?", Vars: []interface{}{v}}
	}
	b, _ := sonic.Marshal([]string(l))
	return clause.Expr{SQL: "?", Vars: []interface{}{string(b)}}
}

// Value is used outside gorm statements (raw queries); it emits JSON.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := sonic.Marshal([]string(l))
	return string(b), err
}

func (l *StringList) Scan(src interface{}) error {
	var s string
	switch t := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case []byte:
		s = string(t)
	case string:
		s = t
	default:
		return fmt.Errorf("StringList: cannot scan %T", src)
	}

	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "{") {
		var arr pq.StringArray
		if err := arr.Scan(s); err != nil {
			return err
		}
		*l = StringList(arr)
		return nil
	}
	*l = StringList(normalize.List(s))
	return nil
}
