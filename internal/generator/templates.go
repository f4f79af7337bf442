package generator

// RouteTableTemplate renders a file exposing the compiled table
const RouteTableTemplate = `// Code generated by restmeta. DO NOT EDIT.

package {{.Package}}

import "{{.Import}}"

// Table rebuilds the compiled resource route table
func Table() (*restmeta.Table, error) {
	var classes []*restmeta.ClassMetaData
{{range .Classes}}
	{
		class := restmeta.NewClassMetaData({{quote .ClassName}})
{{- range .Representations}}
		class.AddRepresentation({{quote .}})
{{- end}}
{{- range .Routes}}
		if err := class.AddRoute(&restmeta.RouteMetaData{
			Name: {{quote .Name}},
{{- if .Verbs}}
			Verbs: []restmeta.Verb{ {{- range $i, $v := .Verbs}}{{if $i}}, {{end}}{{verb $v}}{{end -}} },
{{- end}}
			IsCollection: {{.IsCollection}},
			RoutePattern: {{quote .RoutePattern}},
{{- if .RouteConditions}}
			RouteConditions: map[string]string{
{{- range $k, $v := .RouteConditions}}
				{{quote $k}}: {{quote $v}},
{{- end}}
			},
{{- end}}
{{- if .Expose}}
			Expose: []string{ {{- range $i, $f := .Expose}}{{if $i}}, {{end}}{{quote $f}}{{end -}} },
{{- end}}
			AllowOptionsRequest: {{.AllowOptionsRequest}},
{{- if .ActionClassName}}
			ActionClassName: {{quote .ActionClassName}},
{{- end}}
{{- if .HandleMethodName}}
			HandleMethodName: {{quote .HandleMethodName}},
{{- end}}
			RequiresHandle: {{.RequiresHandle}},
		}); err != nil {
			return nil, err
		}
{{- end}}
{{- if .OriginRouteName}}
		if err := class.SetOriginRoute({{quote .OriginRouteName}}); err != nil {
			return nil, err
		}
{{- end}}
		class.Freeze()
		classes = append(classes, class)
	}
{{end}}
	return restmeta.NewTable(classes...), nil
}

// MustTable is like Table but panics on error
func MustTable() *restmeta.Table {
	table, err := Table()
	if err != nil {
		panic(err)
	}
	return table
}
`
