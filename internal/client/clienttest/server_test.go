package clienttest

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fmuoria/candidate-manager/internal/client"
	"github.com/fmuoria/candidate-manager/internal/logging"
	"github.com/fmuoria/candidate-manager/internal/models"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows ...[]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("Failed to write row: %v", err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Failed to write workbook: %v", err)
	}
	return buf.Bytes()
}

func startServer(t *testing.T, seed ...models.Candidate) (*client.Client, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(NewServer(logging.Discard(), seed...).Router())
	t.Cleanup(ts.Close)
	return client.New(ts.URL, client.WithLogger(logging.Discard())), ts
}

func TestListSortedByID(t *testing.T) {
	c, _ := startServer(t,
		models.Candidate{ID: models.IntPtr(3), Name: "C", Surname: "C", Seniority: models.SeniorityJunior},
		models.Candidate{ID: models.IntPtr(1), Name: "A", Surname: "A", Seniority: models.SenioritySenior},
	)

	list, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(list) != 2 || *list[0].ID != 1 || *list[1].ID != 3 {
		t.Errorf("Unexpected list %+v", list)
	}
}

func TestSeedAssignsMissingIDs(t *testing.T) {
	c, _ := startServer(t,
		models.Candidate{ID: models.IntPtr(4), Name: "A", Surname: "A", Seniority: models.SeniorityJunior},
		models.Candidate{Name: "B", Surname: "B", Seniority: models.SeniorityJunior},
	)

	list, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(list) != 2 || *list[1].ID != 5 {
		t.Errorf("Expected the unnumbered seed to get id 5, got %+v", list)
	}
}

func TestUploadCreatesFromWorkbook(t *testing.T) {
	c, _ := startServer(t)

	data := workbook(t,
		[]any{"seniority", "years", "availability"},
		[]any{"senior", 7, false},
	)
	created, err := c.Create(context.Background(), client.UploadRequest{
		Name: "Ada", Surname: "Lovelace", FileName: "ada.xlsx", File: data,
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if !created.HasID() || *created.ID != 1 {
		t.Errorf("Expected id 1, got %+v", created.ID)
	}
	if created.Seniority != models.SenioritySenior || created.Years != 7 || created.Availability {
		t.Errorf("Unexpected created record %+v", created)
	}
}

func TestUploadRejectsBadWorkbook(t *testing.T) {
	c, _ := startServer(t)

	data := workbook(t, []any{"seniority", "years"}, []any{"junior", 1})
	_, err := c.Create(context.Background(), client.UploadRequest{
		Name: "Ada", Surname: "Lovelace", FileName: "ada.xlsx", File: data,
	})
	if !errors.Is(err, client.ErrRequestFailed) {
		t.Errorf("Expected ErrRequestFailed, got %v", err)
	}
}

func TestUploadStatusCodes(t *testing.T) {
	_, ts := startServer(t)

	tests := []struct {
		name        string
		surname     string
		contentType string
		file        []byte
		want        int
	}{
		{"", "Lovelace", models.SpreadsheetMIMEType, []byte("x"), http.StatusBadRequest},
		{"Ada", "Lovelace", "text/plain", []byte("x"), http.StatusUnsupportedMediaType},
		{"Ada", "Lovelace", models.SpreadsheetMIMEType, workbook(t, []any{"seniority", "years", "availability"}), http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		w.WriteField("name", tt.name)
		w.WriteField("surname", tt.surname)
		h := make(map[string][]string)
		h["Content-Disposition"] = []string{`form-data; name="file"; filename="c.xlsx"`}
		h["Content-Type"] = []string{tt.contentType}
		part, _ := w.CreatePart(h)
		part.Write(tt.file)
		w.Close()

		resp, err := http.Post(ts.URL+"/candidates/upload", w.FormDataContentType(), &buf)
		if err != nil {
			t.Fatalf("POST failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != tt.want {
			t.Errorf("name=%q type=%q: status %d, want %d", tt.name, tt.contentType, resp.StatusCode, tt.want)
		}
	}
}

func TestUpdateAndDelete(t *testing.T) {
	c, _ := startServer(t,
		models.Candidate{ID: models.IntPtr(1), Name: "A", Surname: "A", Seniority: models.SeniorityJunior, Years: 1},
	)
	ctx := context.Background()

	updated, err := c.Update(ctx, models.Candidate{ID: models.IntPtr(1), Name: "B", Surname: "B", Seniority: models.SenioritySenior, Years: 4})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if updated.Name != "B" || updated.Years != 4 {
		t.Errorf("Unexpected update result %+v", updated)
	}

	if _, err := c.Update(ctx, models.Candidate{ID: models.IntPtr(9), Name: "X", Surname: "X", Seniority: models.SeniorityJunior}); !errors.Is(err, client.ErrRequestFailed) {
		t.Errorf("Updating an unknown id should fail, got %v", err)
	}
	if _, err := c.Update(ctx, models.Candidate{ID: models.IntPtr(1), Name: "B", Surname: "B", Seniority: "lead"}); !errors.Is(err, client.ErrRequestFailed) {
		t.Errorf("Invalid seniority should fail, got %v", err)
	}

	if err := c.Delete(ctx, 1); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if err := c.Delete(ctx, 1); !errors.Is(err, client.ErrRequestFailed) {
		t.Errorf("Second delete should fail, got %v", err)
	}

	list, err := c.List(ctx)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("Expected empty list, got %+v", list)
	}
}

func TestHealth(t *testing.T) {
	_, ts := startServer(t)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
}
