package receipt

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/salon-scheduler/internal/domain"
)

var generated = time.Date(2025, time.June, 1, 18, 30, 5, 0, time.UTC)

func booking() domain.Appointment {
	return domain.Appointment{
		ID:           3,
		FirstName:    "Ana",
		LastName:     "Babic",
		PhoneNumber:  "0911234567",
		Date:         "2025-06-02",
		Time:         "09:00",
		ServiceName:  "Manicure",
		ServicePrice: decimal.NewFromInt(20),
	}
}

func TestText(t *testing.T) {
	t.Parallel()

	text := Text(booking(), generated)
	for _, want := range []string{
		"Name: Ana Babic",
		"Phone: 0911234567",
		"Date: 2025-06-02",
		"Time: 09:00",
		"Service: Manicure",
		"Service Price: 20.00€",
		"Generated: 2025-06-01 18:30:05",
	} {
		assert.Contains(t, text, want)
	}
}

func TestFileName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "receipt_Ana_Babic_2025-06-02.txt", FileName(booking(), "txt"))

	sneaky := booking()
	sneaky.LastName = "../etc"
	assert.Equal(t, "receipt_Ana_.._etc_2025-06-02.pdf", FileName(sneaky, "pdf"))
}

func TestWriter(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "receipts")
	w := NewWriter(dir, nil).WithClock(func() time.Time { return generated })

	path, err := w.Write(booking())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "receipt_Ana_Babic_2025-06-02.txt"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Text(booking(), generated), string(content))
}

func TestPDF(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, PDF(&buf, booking(), generated))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}
