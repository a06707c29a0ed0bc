package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCreateClientSendsAuthAndBody(t *testing.T) {
	var gotAuth, gotRequestID, gotContentType string
	var gotBody ClientInput

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/clients", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ClientRecord{ID: 1, Name: gotBody.Name, Email: gotBody.Email})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	rec, err := c.CreateClient(context.Background(), "tok-123", ClientInput{
		Name:  "Acme Co",
		Email: "a@acme.com",
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), rec.ID)
	require.Equal(t, "Bearer tok-123", gotAuth)
	require.NotEmpty(t, gotRequestID)
	require.Equal(t, "application/json", gotContentType)
	require.Equal(t, "Acme Co", gotBody.Name)
	require.Equal(t, "", gotBody.Address)
}

func TestNon2xxDecodesRemoteErrorVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error": "client with this email already exists"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.CreateClient(context.Background(), "tok", ClientInput{Name: "Acme Co"})
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	require.Equal(t, "client with this email already exists", apiErr.Error())
}

func TestNon2xxWithoutPayloadFallsBackToStatusText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.ListClients(context.Background(), "tok")

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestLoginWithoutToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		require.Empty(t, r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(LoginResult{Token: "issued-token", DisplayName: "Dana"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	res, err := c.Login(context.Background(), LoginInput{Email: "d@x.io", Password: "secret"})
	require.NoError(t, err)
	require.Equal(t, "issued-token", res.Token)
	require.Equal(t, "Dana", res.DisplayName)
}

func TestListInvoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/invoices", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]Invoice{
			{ID: 10, Number: "INV-0010", Amount: 1500.50, Status: "sent"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	list, err := c.ListInvoices(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "INV-0010", list[0].Number)
}
