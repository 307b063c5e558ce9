package providers

import "time"

// Имена встроенных провайдеров
const (
	QuAx     = "quax"
	Ikram    = "ikram"
	TmpFiles = "tmpfiles"
)

// BuiltinDescriptors возвращает описания qu.ax, ikram.my.id и tmpfiles.org
func BuiltinDescriptors() []Descriptor {
	return []Descriptor{
		{
			Name:              QuAx,
			Kind:              KindMultipart,
			Endpoint:          "https://qu.ax/upload.php",
			FieldName:         "files[]",
			Headers:           map[string]string{"Referer": "https://qu.ax/"},
			DirectURLTemplate: "https://qu.ax/x/%s.%s",
			Response:          QuAx,
		},
		{
			Name:      Ikram,
			Kind:      KindMultipart,
			Endpoint:  "https://ikram.my.id/upload/",
			FieldName: "file",
			Stage:     true,
			Response:  Ikram,
		},
		{
			Name:      TmpFiles,
			Kind:      KindMultipart,
			Endpoint:  "https://tmpfiles.org/api/v1/upload",
			FieldName: "file",
			Stage:     true,
			Timeout:   30 * time.Second,
			Response:  TmpFiles,
		},
	}
}

// Override - частичное описание провайдера из конфигурации.
// Пустые поля не меняют встроенное описание; Stage - указатель,
// чтобы отличать "не задано" от false.
type Override struct {
	Name              string
	Kind              Kind
	Endpoint          string
	FieldName         string
	Headers           map[string]string
	Stage             *bool
	Timeout           time.Duration
	DirectURLTemplate string
	Response          string
}

// Merge накладывает overrides на base по имени; новые имена добавляются в конец.
func Merge(base []Descriptor, overrides []Override) []Descriptor {
	out := make([]Descriptor, len(base))
	copy(out, base)

	index := make(map[string]int, len(out))
	for i, d := range out {
		index[d.Name] = i
	}

	for _, o := range overrides {
		i, ok := index[o.Name]
		if !ok {
			index[o.Name] = len(out)
			out = append(out, Descriptor{Name: o.Name, Kind: KindMultipart, FieldName: "file"})
			i = len(out) - 1
		}

		d := out[i]
		if o.Kind != "" {
			d.Kind = o.Kind
		}
		if o.Endpoint != "" {
			d.Endpoint = o.Endpoint
		}
		if o.FieldName != "" {
			d.FieldName = o.FieldName
		}
		if o.Headers != nil {
			d.Headers = o.Headers
		}
		if o.Stage != nil {
			d.Stage = *o.Stage
		}
		if o.Timeout != 0 {
			d.Timeout = o.Timeout
		}
		if o.DirectURLTemplate != "" {
			d.DirectURLTemplate = o.DirectURLTemplate
		}
		if o.Response != "" {
			d.Response = o.Response
		}
		out[i] = d
	}
	return out
}
