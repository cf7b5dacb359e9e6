package corpus

import (
	"bytes"
	"sync"

	"gopkg.in/yaml.v3"
)

// yamlCodec marshals the document list with a pooled buffer, reusing the
// encode buffer across snapshots instead of allocating a fresh one per sync.
type yamlCodec struct {
	pool *sync.Pool
}

func newYAMLCodec() *yamlCodec {
	return &yamlCodec{
		pool: &sync.Pool{
			New: func() interface{} { return &bytes.Buffer{} },
		},
	}
}

func (c *yamlCodec) Encode(docs []string) ([]byte, error) {
	buf := c.pool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		c.pool.Put(buf)
	}()

	enc := yaml.NewEncoder(buf)
	enc.SetIndent(2)
	if err := enc.Encode(docs); err != nil {
		return nil, err
	}
	enc.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

func (c *yamlCodec) Decode(data []byte) ([]string, error) {
	var docs []string
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&docs); err != nil {
		return nil, err
	}
	return docs, nil
}
