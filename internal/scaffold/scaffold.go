// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package scaffold renders a Node.js backend (Express routes, Sequelize
// models, JWT auth, server bootstrap and package manifest) from the table
// definitions drawn in the schema builder.
package scaffold

import (
	"bytes"
	"embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"

	"pagecraft/internal/models"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// templates are parsed once; every file is executed by name.
var templates = template.Must(template.New("scaffold").ParseFS(templateFS, "templates/*.tmpl"))

// InvalidCredentials is the single login failure message of the generated
// auth flow.
const InvalidCredentials = "Invalid credentials"

// TokenTTL is the lifetime of tokens issued by the generated auth flow.
const TokenTTL = "7d"

// ManifestName is the package name written to the generated package.json.
const ManifestName = "generated-backend"

type tableView struct {
	Name   string // declared table name, used for the mount path and tableName
	Model  string // ModelName(Name), sanitized to a JavaScript identifier
	File   string // route module file name without extension
	Fields []fieldView
}

type fieldView struct {
	Key   string   // object key, quoted when the name is not an identifier
	Props []string // type first, then constraints in declaration order
}

// GenerateBackend renders every backend artifact for the given tables. It
// never fails: unrecognized field types fall back to STRING and names that
// are not valid JavaScript identifiers are sanitized.
func GenerateBackend(tables []models.Table) models.Backend {
	views := buildViews(tables)
	return models.Backend{
		APIRoutes:       render("routes.js.tmpl", views),
		DatabaseSchema:  render("models.js.tmpl", views),
		AuthFlow:        render("auth.js.tmpl", authData()),
		Manifest:        render("package.json.tmpl", struct{ Name string }{ManifestName}),
		ServerBootstrap: render("server.js.tmpl", views),
	}
}

func authData() any {
	return struct {
		TokenTTL           string
		BcryptRounds       int
		InvalidCredentials string
	}{TokenTTL, 10, InvalidCredentials}
}

// render executes one embedded template. The templates and the data shapes
// are fixed at compile time, so an execution error is a programming error.
func render(name string, data any) string {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		panic(fmt.Sprintf("scaffold: render %s: %v", name, err))
	}
	return buf.String()
}

func buildViews(tables []models.Table) []tableView {
	views := make([]tableView, 0, len(tables))
	for _, t := range tables {
		v := tableView{
			Name:  t.Name,
			Model: identifier(ModelName(t.Name)),
			File:  identifier(t.Name),
		}
		for _, f := range t.Fields {
			v.Fields = append(v.Fields, fieldView{Key: objectKey(f.Name), Props: fieldProps(f)})
		}
		views = append(views, v)
	}
	return views
}

// ModelName upper-cases the first character of a table name. The result is
// the identifier shared by the routes, schema and bootstrap artifacts.
func ModelName(table string) string {
	r, size := utf8.DecodeRuneInString(table)
	if r == utf8.RuneError {
		return table
	}
	return string(unicode.ToUpper(r)) + table[size:]
}

// SequelizeType maps a semantic field type to its Sequelize data type.
func SequelizeType(t models.FieldType) string {
	switch t {
	case models.FieldString, models.FieldEmail, models.FieldPassword:
		return "STRING"
	case models.FieldNumber:
		return "INTEGER"
	case models.FieldBoolean:
		return "BOOLEAN"
	case models.FieldDate:
		return "DATE"
	default:
		return "STRING"
	}
}

func fieldProps(f models.Field) []string {
	props := []string{"type: DataTypes." + SequelizeType(f.Type)}
	if f.Required {
		props = append(props, "allowNull: false")
	}
	if f.Unique {
		props = append(props, "unique: true")
	}
	if f.DefaultValue != nil && *f.DefaultValue != "" {
		props = append(props, "defaultValue: "+defaultLiteral(f.Type, *f.DefaultValue))
	}
	return props
}

// defaultLiteral renders a default value as a JavaScript literal. Numbers
// and booleans are emitted bare when the value parses as one; everything
// else becomes a quoted string.
func defaultLiteral(t models.FieldType, v string) string {
	switch t {
	case models.FieldNumber:
		if _, err := strconv.ParseFloat(v, 64); err == nil {
			return v
		}
	case models.FieldBoolean:
		if b, err := strconv.ParseBool(v); err == nil {
			return strconv.FormatBool(b)
		}
	}
	return "'" + template.JSEscapeString(v) + "'"
}

// identifier replaces every character that cannot appear in a JavaScript
// identifier with an underscore.
func identifier(s string) string {
	if s == "" {
		return "_"
	}
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
			b.WriteRune(r)
		case unicode.IsDigit(r) && i > 0:
			b.WriteRune(r)
		case unicode.IsDigit(r):
			b.WriteByte('_')
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func objectKey(name string) string {
	if name != "" && identifier(name) == name {
		return name
	}
	return "'" + template.JSEscapeString(name) + "'"
}
