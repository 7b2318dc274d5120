package source

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pickme-go/errors"
	"github.com/pickme-go/k-join/data"
	"github.com/pickme-go/log/v2"
)

const maxLineSize = 1024 * 1024

// FileSource reads newline delimited JSON records. Line order is the record
// order; blank lines are skipped.
type FileSource struct {
	name   string
	reader io.Reader
	closer io.Closer
	logger log.Logger
}

func NewFileSource(path string, logger log.Logger) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithPrevious(err, fmt.Sprintf(`cannot open input file %s`, path))
	}

	s := NewReaderSource(path, f, logger)
	s.closer = f

	return s, nil
}

func NewReaderSource(name string, r io.Reader, logger log.Logger) *FileSource {
	return &FileSource{
		name:   name,
		reader: r,
		logger: logger.NewLog(log.Prefixed(`file-source`)),
	}
}

func (s *FileSource) Records(ctx context.Context) (<-chan *data.Record, error) {
	records := make(chan *data.Record)

	go func() {
		defer close(records)

		scanner := bufio.NewScanner(s.reader)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

		var line int64
		for scanner.Scan() {
			line++
			value := bytes.TrimSpace(scanner.Bytes())
			if len(value) < 1 {
				continue
			}

			// scanner reuses its buffer
			byt := make([]byte, len(value))
			copy(byt, value)

			record := &data.Record{
				Value:     byt,
				Topic:     s.name,
				Offset:    line,
				Timestamp: time.Now(),
				UUID:      uuid.New(),
			}

			select {
			case records <- record:
			case <-ctx.Done():
				return
			}
		}

		if err := scanner.Err(); err != nil {
			s.logger.Error(fmt.Sprintf(`reading %s stopped at line %d due to %+v`, s.name, line, err))
			return
		}

		s.logger.Info(fmt.Sprintf(`%s exhausted after %d lines`, s.name, line))
	}()

	return records, nil
}

func (s *FileSource) Close() error {
	if s.closer == nil {
		return nil
	}

	return s.closer.Close()
}
