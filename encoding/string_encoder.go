package encoding

import (
	"github.com/pickme-go/errors"
)

type StringEncoder struct{}

func (StringEncoder) Encode(v interface{}) ([]byte, error) {
	str, ok := v.(string)
	if !ok {
		return nil, errors.New(`invalid type, expected string`)
	}

	return []byte(str), nil
}

func (StringEncoder) Decode(data []byte) (interface{}, error) {
	return string(data), nil
}
