package importer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientUploadsAndReportsServerCounts(t *testing.T) {
	router, _ := newTestRouter(t, 0)
	auth := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth <- r.Header.Get("Authorization")
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	var (
		mu     sync.Mutex
		states []TransferState
	)
	client := NewClient(srv.URL+"/", "token-1", srv.Client())
	tr := client.Start(context.Background(), csvUpload(
		",2025-01-15,B2-404,2,120,Lunch,Paid,Cash,,,,",
		",2025-01-16,B2-404,2,120,Lunch,Paid,Cash,,,,",
	), DefaultOptions, func(p Progress) {
		mu.Lock()
		states = append(states, p.State)
		mu.Unlock()
	})

	sum, err := tr.Wait()
	require.NoError(t, err)
	require.Equal(t, 2, sum.Imported)
	require.Equal(t, 2, sum.Total)
	require.Equal(t, "Bearer token-1", <-auth)

	p := tr.Progress()
	require.Equal(t, StateDone, p.State)
	require.Equal(t, 100, p.Percent)
	require.Equal(t, p.Total, p.Sent)

	mu.Lock()
	defer mu.Unlock()
	require.Contains(t, states, StateUploading)
	require.Equal(t, StateDone, states[len(states)-1])

	tr.Cancel()
	require.Equal(t, StateDone, tr.Progress().State)
}

func TestClientPassesServerMessageThrough(t *testing.T) {
	router, _ := newTestRouter(t, 0)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	tr := NewClient(srv.URL, "", srv.Client()).Start(context.Background(),
		Upload{Filename: "orders.csv", Data: []byte("Date,Mode\n2025-01-15,Lunch\n")}, DefaultOptions, nil)
	_, err := tr.Wait()

	var upErr *UploadError
	require.True(t, errors.As(err, &upErr))
	require.Equal(t, FailureServer, upErr.Kind)
	require.Equal(t, http.StatusBadRequest, upErr.Status)
	require.Contains(t, upErr.Message, "Missing required columns: Delivery Address")
	require.Equal(t, StateFailed, tr.Progress().State)
}

func TestClientCategorisesNonJSONResponses(t *testing.T) {
	cases := []struct {
		status int
		kind   FailureKind
	}{
		{http.StatusUnauthorized, FailureAuth},
		{http.StatusForbidden, FailureAuth},
		{http.StatusRequestEntityTooLarge, FailureTooLarge},
		{http.StatusBadGateway, FailureServer},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte("<html><body>nope</body></html>"))
		}))

		_, err := NewClient(srv.URL, "", srv.Client()).Start(context.Background(), csvUpload(), DefaultOptions, nil).Wait()
		srv.Close()

		var upErr *UploadError
		require.True(t, errors.As(err, &upErr), tc.status)
		require.Equal(t, tc.kind, upErr.Kind, tc.status)
		require.Equal(t, genericMessages[tc.kind], upErr.Message)
	}
}

func TestClientNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, "", nil).Start(context.Background(), csvUpload(), DefaultOptions, nil).Wait()
	var upErr *UploadError
	require.True(t, errors.As(err, &upErr))
	require.Equal(t, FailureNetwork, upErr.Kind)
	require.Equal(t, "error uploading file", upErr.Message)
}

func TestClientCancelResetsProgress(t *testing.T) {
	arrived := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(arrived)
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	tr := NewClient(srv.URL, "", srv.Client()).Start(context.Background(), csvUpload(
		",2025-01-15,B2-404,2,120,Lunch,Paid,Cash,,,,",
	), DefaultOptions, nil)
	<-arrived

	tr.Cancel()
	tr.Cancel()

	sum, err := tr.Wait()
	require.Equal(t, Summary{}, sum)
	var upErr *UploadError
	require.True(t, errors.As(err, &upErr))
	require.Equal(t, FailureCancelled, upErr.Kind)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, Progress{State: StateIdle}, tr.Progress())
}
