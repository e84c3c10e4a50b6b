package manifest

import "github.com/alnah/go-mdpipe/internal/yamlutil"

func parseYAML(data []byte) (*Pipeline, error) {
	var m Pipeline
	if err := yamlutil.UnmarshalStrict(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
