// Generate a table definition (a map of formatters) from an annotated structure type using
// reflection.
//
// DefineTableFromTags generates the table from the tagged fields on a structure type: fields are
// included if they carry a `desc` annotation, and excluded if their name appears in an optional
// blocklist.  A field may also carry an `alias` annotation, a comma-separated list of alternate
// names that format identically to the field itself.
//
// There must be no duplicates in the union of field names and aliases.

package table

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

var stringerTy = reflect.TypeFor[fmt.Stringer]()

func DefineTableFromTags(
	structTy reflect.Type,
	isExcluded map[string]bool,
) (formatters map[string]Formatter) {
	if structTy.Kind() != reflect.Struct {
		panic("Struct type required")
	}
	formatters = make(map[string]Formatter)
	for i, lim := 0, structTy.NumField(); i < lim; i++ {
		fld := structTy.Field(i)
		if isExcluded[fld.Name] {
			continue
		}
		desc := fld.Tag.Get("desc")
		if desc == "" {
			continue
		}
		var aliases []string
		if aliasStr := fld.Tag.Get("alias"); aliasStr != "" {
			aliases = strings.Split(aliasStr, ",")
		}
		f := Formatter{
			Help: desc,
			Fmt:  reflectTypeFormatter(i, fld.Type),
		}
		if _, found := formatters[fld.Name]; found {
			panic(fmt.Sprintf("Duplicate field name '%s'", fld.Name))
		}
		formatters[fld.Name] = f
		for _, a := range aliases {
			if _, found := formatters[a]; found {
				panic(fmt.Sprintf("Duplicate alias '%s'", a))
			}
			fa := f
			fa.AliasOf = fld.Name
			formatters[a] = fa
		}
	}
	return
}

func reflectTypeFormatter(ix int, ty reflect.Type) func(any, PrintMods) string {
	switch {
	case ty.Implements(stringerTy):
		return func(d any, ctx PrintMods) string {
			val := reflect.Indirect(reflect.ValueOf(d)).Field(ix)
			s := val.MethodByName("String").Call(nil)[0].String()
			if (ctx&PrintModNoDefaults) != 0 && s == "" {
				return "*skip*"
			}
			return s
		}
	default:
		switch ty.Kind() {
		case reflect.Bool:
			return func(d any, ctx PrintMods) string {
				val := reflect.Indirect(reflect.ValueOf(d)).Field(ix).Bool()
				if (ctx&PrintModNoDefaults) != 0 && !val {
					return "*skip*"
				}
				if val {
					return "yes"
				}
				return "no"
			}
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return func(d any, ctx PrintMods) string {
				val := reflect.Indirect(reflect.ValueOf(d)).Field(ix).Int()
				if (ctx&PrintModNoDefaults) != 0 && val == 0 {
					return "*skip*"
				}
				return strconv.FormatInt(val, 10)
			}
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return func(d any, ctx PrintMods) string {
				val := reflect.Indirect(reflect.ValueOf(d)).Field(ix).Uint()
				if (ctx&PrintModNoDefaults) != 0 && val == 0 {
					return "*skip*"
				}
				return strconv.FormatUint(val, 10)
			}
		case reflect.Float32, reflect.Float64:
			return func(d any, ctx PrintMods) string {
				val := reflect.Indirect(reflect.ValueOf(d)).Field(ix).Float()
				if (ctx&PrintModNoDefaults) != 0 && val == 0 {
					return "*skip*"
				}
				prec := 64
				if ty.Kind() == reflect.Float32 {
					prec = 32
				}
				return strconv.FormatFloat(val, 'g', -1, prec)
			}
		case reflect.String:
			return func(d any, ctx PrintMods) string {
				val := reflect.Indirect(reflect.ValueOf(d)).Field(ix).String()
				if (ctx&PrintModNoDefaults) != 0 && val == "" {
					return "*skip*"
				}
				return val
			}
		default:
			panic(fmt.Sprintf("Unhandled type kind %d", ty.Kind()))
		}
	}
}
