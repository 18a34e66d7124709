package udpipe

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
)

type roundTrip func(*http.Request) *http.Response

func (rt roundTrip) RoundTrip(req *http.Request) (*http.Response, error) {
	return rt(req), nil
}

func TestProcessSuccess(t *testing.T) {
	client := &Client{
		Endpoint: "https://udpipe.test/api/process",
		Model:    "english",
		HTTPClient: &http.Client{
			Transport: roundTrip(func(req *http.Request) *http.Response {
				body, _ := io.ReadAll(req.Body)
				form, err := url.ParseQuery(string(body))
				if err != nil {
					t.Fatalf("bad form body: %v", err)
				}
				if form.Get("model") != "english" {
					t.Fatalf("expected model english, got %q", form.Get("model"))
				}
				if form.Get("data") != "Dogs bark." {
					t.Fatalf("unexpected data %q", form.Get("data"))
				}
				return &http.Response{
					StatusCode: 200,
					Body: io.NopCloser(strings.NewReader(`{
						"model":"english-ewt-ud-2.12",
						"result":"1\tDogs\tdog\tNOUN\t_\t_\t_\t_\t_\t_\n"
					}`)),
					Header: make(http.Header),
				}
			}),
		},
	}

	out, err := client.Process(context.Background(), "Dogs bark.")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !strings.HasPrefix(out, "1\tDogs\tdog") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestProcessHTTPError(t *testing.T) {
	client := &Client{
		Model: "klingon",
		HTTPClient: &http.Client{
			Transport: roundTrip(func(req *http.Request) *http.Response {
				return &http.Response{
					StatusCode: 400,
					Body:       io.NopCloser(strings.NewReader("Unknown model 'klingon'")),
					Header:     make(http.Header),
				}
			}),
		},
	}

	_, err := client.Process(context.Background(), "text")
	if err == nil {
		t.Fatal("expected error for status 400")
	}
	if !strings.Contains(err.Error(), "klingon") {
		t.Errorf("error should carry the service message, got %v", err)
	}
}

func TestProcessRequiresModel(t *testing.T) {
	client := &Client{}
	if _, err := client.Process(context.Background(), "text"); err == nil {
		t.Fatal("expected error without model")
	}
}
