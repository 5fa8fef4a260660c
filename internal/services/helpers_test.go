package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"testing"

	"phonestore/internal/domain"
)

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	Err    string         `json:"err"`
	Fields map[string]any `json:"fields"`
}

func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var e logEntry
		if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

var errStoreDown = errors.New("store down")

// failingKV fails every call.
type failingKV struct{}

func (failingKV) Get(context.Context, string) (string, bool, error) { return "", false, errStoreDown }
func (failingKV) Set(context.Context, string, string) error         { return errStoreDown }
func (failingKV) Delete(context.Context, string) error              { return errStoreDown }

var (
	gb128 = domain.StorageOption{Size: "128GB", PriceIncrement: 0}
	gb256 = domain.StorageOption{Size: "256GB", PriceIncrement: 100}
)

func iphone13() domain.Phone {
	return domain.NewPhone("1", "Apple", "iPhone 13", 799, "iphone13.jpg",
		[]string{"Black", "White"}, []domain.StorageOption{gb128, gb256})
}

func galaxy() domain.Phone {
	return domain.NewPhone("2", "Samsung", "Galaxy S21", 699, "s21.jpg",
		[]string{"Gray"}, []domain.StorageOption{gb128})
}

type lineKey struct {
	PhoneID, Color, Storage string
	Quantity                int
}

func lineKeys(items []domain.CartItem) map[lineKey]int {
	out := map[lineKey]int{}
	for _, it := range items {
		out[lineKey{it.Phone.ID(), it.SelectedColor, it.SelectedStorage.Size, it.Quantity}]++
	}
	return out
}
