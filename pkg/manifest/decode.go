package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	kubeyaml "k8s.io/apimachinery/pkg/util/yaml"
	"k8s.io/client-go/kubernetes/scheme"
)

// Object is one decoded resource out of a rendered manifest.
type Object struct {
	// manifest file the resource came from.
	Source string

	GVK schema.GroupVersionKind

	Resource runtime.Object
}

// DecodeAll decodes every YAML document in every rendered manifest
// into a typed API object via the client-go scheme.
//
// Empty documents are skipped. Unknown kinds fail here, before
// anything is sent to the cluster.
func DecodeAll(rendered []Rendered) ([]Object, error) {
	deserializer := scheme.Codecs.UniversalDeserializer()

	objects := []Object{}
	for _, r := range rendered {
		decoder := kubeyaml.NewYAMLOrJSONDecoder(bytes.NewReader(r.Body), 4096)
		for {
			var raw runtime.RawExtension
			if err := decoder.Decode(&raw); err != nil {
				if errors.Is(err, io.EOF) {
					break
				}
				return nil, fmt.Errorf("failed to parse manifest %s: %w", r.Name, err)
			}
			if len(bytes.TrimSpace(raw.Raw)) == 0 {
				continue
			}

			obj, gvk, err := deserializer.Decode(raw.Raw, nil, nil)
			if err != nil {
				return nil, fmt.Errorf("failed to decode manifest %s: %w", r.Name, err)
			}
			objects = append(objects, Object{
				Source:   r.Name,
				GVK:      *gvk,
				Resource: obj,
			})
		}
	}

	return objects, nil
}
