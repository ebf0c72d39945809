package extract

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperjump/ragpipe/internal/backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0600))
	return path
}

func TestLocal_ExtractPDF(t *testing.T) {
	path := writeFile(t, "rag.pdf", buildPDF("Michael Harditya is a student."))
	got, err := NewLocal().Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Contains(t, got, "Michael Harditya is a student.")
}

func TestLocal_ExtractPDF_upperCaseExtension(t *testing.T) {
	path := writeFile(t, "RAG.PDF", buildPDF("Upper"))
	got, err := NewLocal().Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Contains(t, got, "Upper")
}

func TestLocal_ExtractPDF_noText(t *testing.T) {
	path := writeFile(t, "blank.pdf", buildPDF())
	got, err := NewLocal().Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(got))
}

func TestLocal_ExtractPDF_parseError(t *testing.T) {
	path := writeFile(t, "broken.pdf", []byte("this is not a pdf"))
	_, err := NewLocal().Extract(context.Background(), path)
	require.Error(t, err)
	assert.Equal(t, KindParse, KindOf(err))
	var ee *ExtractionError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, path, ee.Path)
}

func TestLocal_Extract_sniffsPDFWithoutExtension(t *testing.T) {
	path := writeFile(t, "report", buildPDF("Quarterly revenue grew."))
	got, err := NewLocal().Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Contains(t, got, "Quarterly revenue grew.")
	assert.NotContains(t, got, "%PDF-")
}

func TestLocal_Extract_malformedPDFWithoutExtension(t *testing.T) {
	path := writeFile(t, "report", []byte("%PDF-1.4\n%garbage not a real pdf\n"))
	got, err := NewLocal().Extract(context.Background(), path)
	require.Error(t, err)
	assert.Empty(t, got)
	assert.Equal(t, KindParse, KindOf(err))
}

func TestLocal_Extract_unknownExtension(t *testing.T) {
	path := writeFile(t, "notes.log", []byte("plain notes"))
	got, err := NewLocal().Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "plain notes", got)

	path = writeFile(t, "image.bin", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d})
	_, err = NewLocal().Extract(context.Background(), path)
	require.Error(t, err)
	assert.Equal(t, KindParse, KindOf(err))
}

func TestLocal_Extract_missingFile(t *testing.T) {
	_, err := NewLocal().Extract(context.Background(), filepath.Join(t.TempDir(), "absent.pdf"))
	require.Error(t, err)
	assert.Equal(t, KindIO, KindOf(err))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLocal_ExtractBytes_plain(t *testing.T) {
	e := NewLocal()
	got, err := e.ExtractBytes([]byte("Hello world\nLine 2"), ".txt")
	require.NoError(t, err)
	assert.Equal(t, "Hello world\nLine 2", got)

	got, err = e.ExtractBytes([]byte("hello\x80world"), ".md")
	require.NoError(t, err)
	assert.Equal(t, "hello\uFFFDworld", got)
}

func TestLocal_ExtractBytes_excel(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Title"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "Value 1"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", "Value 2"))
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)

	got, err := NewLocal().ExtractBytes(buf.Bytes(), ".xlsx")
	require.NoError(t, err)
	assert.Equal(t, "Title\nValue 1\tValue 2", got)
}

type fakePDFClient struct {
	text string
	err  error
	path string
}

func (f *fakePDFClient) ExtractPDF(_ context.Context, path string) (string, error) {
	f.path = path
	return f.text, f.err
}

func TestRemote_Extract(t *testing.T) {
	client := &fakePDFClient{text: "remote text"}
	got, err := NewRemote(client).Extract(context.Background(), "pdfs/rag.pdf")
	require.NoError(t, err)
	assert.Equal(t, "remote text", got)
	assert.Equal(t, "pdfs/rag.pdf", client.path)
}

func TestRemote_Extract_emptyIsNotError(t *testing.T) {
	got, err := NewRemote(&fakePDFClient{}).Extract(context.Background(), "empty.pdf")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestRemote_Extract_errorKinds(t *testing.T) {
	netErr := &backend.Error{Kind: backend.NetworkError, Endpoint: backend.PathExtractPDF, Err: errors.New("refused")}
	_, err := NewRemote(&fakePDFClient{err: netErr}).Extract(context.Background(), "a.pdf")
	assert.Equal(t, KindNetwork, KindOf(err))
	assert.ErrorIs(t, err, backend.ErrNetwork)

	protoErr := &backend.Error{Kind: backend.ProtocolError, Endpoint: backend.PathExtractPDF, Err: errors.New("no text")}
	_, err = NewRemote(&fakePDFClient{err: protoErr}).Extract(context.Background(), "a.pdf")
	assert.Equal(t, KindProtocol, KindOf(err))
	assert.ErrorIs(t, err, backend.ErrProtocol)
}

func TestKindOf_unrelatedError(t *testing.T) {
	assert.Equal(t, Kind(0), KindOf(errors.New("other")))
	assert.Equal(t, "parse", KindParse.String())
}
