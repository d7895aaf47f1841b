package client_test

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"proconnect/internal/auth"
	"proconnect/internal/config"
	"proconnect/internal/server"
	"proconnect/internal/testutil"
	"proconnect/pkg/client"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// startAPI serves a fresh API on a loopback port and returns its base URL.
func startAPI(t *testing.T) string {
	t.Helper()

	prev := auth.HashCost
	auth.HashCost = bcrypt.MinCost
	t.Cleanup(func() { auth.HashCost = prev })

	cfg := &config.Config{Port: "0", JWTSecret: "client-test-secret-0123456789abcdefghij", JWTTTLHours: 1, Env: "test"}
	srv, err := server.NewServerWithDeps(cfg, testutil.NewSQLiteDB(t), nil)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	app := srv.App()
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	return "http://" + ln.Addr().String() + "/api"
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := client.New(client.Config{})
	assert.Error(t, err)

	_, err = client.New(client.Config{BaseURL: "not a url"})
	assert.Error(t, err)
}

func TestClient_APIErrorDecoding(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"You can only delete your own posts","code":"FORBIDDEN"}`))
	}))
	defer ts.Close()

	c, err := client.New(client.Config{BaseURL: ts.URL + "/api/"})
	require.NoError(t, err)

	err = c.DeletePost(context.Background(), "tok", "p1")
	require.Error(t, err)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "FORBIDDEN", apiErr.Code)
	assert.True(t, client.IsStatus(err, http.StatusForbidden))
}

func TestClient_EndToEnd(t *testing.T) {
	c, err := client.New(client.Config{BaseURL: startAPI(t)})
	require.NoError(t, err)
	ctx := context.Background()

	ann, err := c.Register(ctx, "Ann", "ann@x.io", "pw")
	require.NoError(t, err)
	_, err = c.Register(ctx, "Bob", "bob@x.io", "pw")
	require.NoError(t, err)

	_, err = c.Login(ctx, "ann@x.io", "wrong")
	assert.True(t, client.IsStatus(err, http.StatusUnauthorized))

	annLogin, err := c.Login(ctx, "ann@x.io", "pw")
	require.NoError(t, err)
	bobLogin, err := c.Login(ctx, "bob@x.io", "pw")
	require.NoError(t, err)

	post, err := c.CreatePost(ctx, annLogin.Token, "Hello")
	require.NoError(t, err)
	assert.Equal(t, ann.ID, post.User.ID)

	like, err := c.ToggleLike(ctx, bobLogin.Token, post.ID)
	require.NoError(t, err)
	assert.Equal(t, &client.LikeResult{Liked: true, LikesCount: 1}, like)

	comments, err := c.AddComment(ctx, bobLogin.Token, post.ID, "Nice")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "Bob", comments[0].User.Name)

	updated, err := c.UpdatePost(ctx, annLogin.Token, post.ID, "Hello, world")
	require.NoError(t, err)
	assert.Equal(t, "Hello, world", updated.Content)
	assert.Len(t, updated.Likes, 1)
	assert.Len(t, updated.Comments, 1)

	err = c.DeletePost(ctx, bobLogin.Token, post.ID)
	assert.True(t, client.IsStatus(err, http.StatusForbidden))

	mine, err := c.ListMyPosts(ctx, annLogin.Token)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	byAnn, err := c.ListUserPosts(ctx, ann.ID)
	require.NoError(t, err)
	assert.Len(t, byAnn, 1)

	bio := "Engineer"
	me, err := c.UpdateMe(ctx, annLogin.Token, client.ProfileUpdate{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "Engineer", me.Bio)

	me, err = c.Me(ctx, annLogin.Token)
	require.NoError(t, err)
	assert.Equal(t, "ann@x.io", me.Email)

	anon, err := c.Profile(ctx, "", ann.ID)
	require.NoError(t, err)
	assert.Empty(t, anon.Email)

	seen, err := c.Profile(ctx, bobLogin.Token, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, "ann@x.io", seen.Email)

	require.NoError(t, c.DeletePost(ctx, annLogin.Token, post.ID))
	feed, err := c.ListPosts(ctx)
	require.NoError(t, err)
	assert.Empty(t, feed)
}
