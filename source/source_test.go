package source

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pickme-go/k-join/consumer"
	"github.com/pickme-go/k-join/data"
	"github.com/pickme-go/log/v2"
)

const input = `{"user_id":"0001","name":"Alice","event":{"type":"customer"}}

{"user_id":"0001","order_id":"o1","event":{"type":"order"}}
`

func collect(t *testing.T, s Source) []*data.Record {
	records, err := s.Records(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	var out []*data.Record
	for r := range records {
		out = append(out, r)
	}

	return out
}

func TestReaderSource_Records(t *testing.T) {
	s := NewReaderSource(`events.json`, strings.NewReader(input), log.NewNoopLogger())
	records := collect(t, s)

	if len(records) != 2 {
		t.Fatalf(`want 2 records got %d`, len(records))
	}

	if records[0].Offset != 1 || records[1].Offset != 3 {
		t.Errorf(`unexpected offsets %d %d`, records[0].Offset, records[1].Offset)
	}

	if !strings.Contains(string(records[1].Value), `"o1"`) || records[1].Topic != `events.json` {
		t.Errorf(`unexpected record %s`, records[1])
	}
}

func TestFileSource_Records(t *testing.T) {
	dir, err := ioutil.TempDir(``, `k-join`)
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, `events.json`)
	if err := ioutil.WriteFile(path, []byte(input), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := NewFileSource(path, log.NewNoopLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if len(collect(t, s)) != 2 {
		t.Error(`unexpected record count`)
	}
}

func TestNewFileSource_Missing(t *testing.T) {
	if _, err := NewFileSource(`/does/not/exist.json`, log.NewNoopLogger()); err == nil {
		t.Error(`expected an error for a missing file`)
	}
}

func TestKafkaSource_Records(t *testing.T) {
	c := consumer.NewMockConsumer([]*data.Record{
		{Topic: `events`, Value: []byte(`{}`)},
		{Topic: `other`, Value: []byte(`{}`)},
	})

	s, err := NewKafkaSource(`events`, c)
	if err != nil {
		t.Fatal(err)
	}

	if len(collect(t, s)) != 1 {
		t.Error(`unexpected record count`)
	}

	if err := s.Close(); err != nil {
		t.Error(err)
	}

	if _, err := NewKafkaSource(``, c); err == nil {
		t.Error(`expected an error for an empty topic`)
	}
}
