package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSetHeaderAppliesToRequests(t *testing.T) {
	var gotConnection, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotConnection = r.Header.Get("Connection")
		gotUA = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	client := NewSwoopHTTPClient(HTTPClientConfig{})
	client.SetHeader("Connection", "keep-alive")

	req, err := http.NewRequest("GET", server.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	resp.Body.Close()

	if gotConnection != "keep-alive" {
		t.Errorf("expected Connection header keep-alive, got %q", gotConnection)
	}
	if gotUA != ToolUserAgent {
		t.Errorf("expected default User-Agent %q, got %q", ToolUserAgent, gotUA)
	}
}

func TestConfiguredHeadersSurviveSetHeader(t *testing.T) {
	var gotAuth, gotCustom string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotCustom = r.Header.Get("X-Custom")
	}))
	defer server.Close()

	client := NewSwoopHTTPClient(HTTPClientConfig{
		Headers: map[string]string{"Authorization": "Bearer token123"},
	})
	client.SetHeader("X-Custom", "value")

	req, _ := http.NewRequest("GET", server.URL, nil)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	resp.Body.Close()

	if gotAuth != "Bearer token123" {
		t.Errorf("expected configured Authorization header, got %q", gotAuth)
	}
	if gotCustom != "value" {
		t.Errorf("expected later SetHeader value, got %q", gotCustom)
	}
}
