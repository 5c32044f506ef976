package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/cicc-pucmm/open-house-social-app-2026/models"
)

func TestAddCommentRejectsBlankText(t *testing.T) {
	env := newTestEnv(t)
	author, _ := env.createUser(t, "rosa", "rosa@example.com", false)
	_, token := env.createUser(t, "juan", "juan@example.com", false)
	post := env.createPost(t, author.ID, "sunset", []string{"f"})

	path := fmt.Sprintf("/api/v1/posts/%d/comments", post.ID)
	for _, text := range []string{"", "   ", "\n\t "} {
		w, _ := env.doJSON(t, http.MethodPost, path, token, map[string]string{"text": text})
		if w.Code != http.StatusBadRequest {
			t.Errorf("text %q: status = %d, want 400", text, w.Code)
		}
	}

	var fresh models.Post
	env.db.First(&fresh, post.ID)
	if fresh.CommentCount != 0 {
		t.Fatalf("comment_count = %d after rejected comments, want 0", fresh.CommentCount)
	}
}

func TestAddCommentIncrementsCounter(t *testing.T) {
	env := newTestEnv(t)
	author, _ := env.createUser(t, "rosa", "rosa@example.com", false)
	_, token := env.createUser(t, "juan", "juan@example.com", false)
	post := env.createPost(t, author.ID, "sunset", []string{"f"})

	path := fmt.Sprintf("/api/v1/posts/%d/comments", post.ID)
	w, _ := env.doJSON(t, http.MethodPost, path, token, map[string]string{"text": "  great shot  "})
	wantStatus(t, w, http.StatusOK)

	var fresh models.Post
	env.db.First(&fresh, post.ID)
	if fresh.CommentCount != 1 {
		t.Fatalf("comment_count = %d, want 1", fresh.CommentCount)
	}

	var comment models.Comment
	env.db.Where("post_id = ?", post.ID).First(&comment)
	if comment.Text != "great shot" {
		t.Fatalf("text = %q, want trimmed %q", comment.Text, "great shot")
	}
}

func TestAddCommentMissingPost(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "juan", "juan@example.com", false)

	w, _ := env.doJSON(t, http.MethodPost, "/api/v1/posts/424242/comments", token, map[string]string{"text": "hello"})
	wantStatus(t, w, http.StatusNotFound)
}

func TestListCommentsAscendingWithUsernames(t *testing.T) {
	env := newTestEnv(t)
	author, _ := env.createUser(t, "rosa", "rosa@example.com", false)
	_, juanToken := env.createUser(t, "juan", "juan@example.com", false)
	_, anaToken := env.createUser(t, "ana", "ana@example.com", false)
	post := env.createPost(t, author.ID, "sunset", []string{"f"})

	path := fmt.Sprintf("/api/v1/posts/%d/comments", post.ID)
	for _, c := range []struct {
		token, text string
	}{
		{juanToken, "first"},
		{anaToken, "second"},
	} {
		w, _ := env.doJSON(t, http.MethodPost, path, c.token, map[string]string{"text": c.text})
		wantStatus(t, w, http.StatusOK)
	}

	w, resp := env.doJSON(t, http.MethodGet, path, "", nil)
	wantStatus(t, w, http.StatusOK)

	var got struct {
		Items []CommentView `json:"items"`
	}
	decodeData(t, resp, &got)
	if len(got.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(got.Items))
	}
	if got.Items[0].Text != "first" || got.Items[0].Username != "juan" {
		t.Fatalf("first item = %+v", got.Items[0])
	}
	if got.Items[1].Text != "second" || got.Items[1].Username != "ana" {
		t.Fatalf("second item = %+v", got.Items[1])
	}
}

func TestDeleteCommentAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	author, authorToken := env.createUser(t, "rosa", "rosa@example.com", false)
	_, adminToken := env.createUser(t, "Dean", "dean@example.edu", true)
	post := env.createPost(t, author.ID, "sunset", []string{"f"})

	comment := models.Comment{PostID: post.ID, UserID: author.ID, Text: "self praise"}
	if err := env.db.Create(&comment).Error; err != nil {
		t.Fatalf("seed comment: %v", err)
	}
	env.db.Model(&models.Post{}).Where("id = ?", post.ID).Update("comment_count", 1)

	path := fmt.Sprintf("/api/v1/comments/%d", comment.ID)
	w, _ := env.doJSON(t, http.MethodDelete, path, authorToken, nil)
	wantStatus(t, w, http.StatusForbidden)

	w, _ = env.doJSON(t, http.MethodDelete, path, adminToken, nil)
	wantStatus(t, w, http.StatusOK)

	var fresh models.Post
	env.db.First(&fresh, post.ID)
	if fresh.CommentCount != 0 {
		t.Fatalf("comment_count = %d, want 0", fresh.CommentCount)
	}
	var rows int64
	env.db.Model(&models.Comment{}).Where("id = ?", comment.ID).Count(&rows)
	if rows != 0 {
		t.Fatal("comment row survived deletion")
	}

	w, _ = env.doJSON(t, http.MethodDelete, path, adminToken, nil)
	wantStatus(t, w, http.StatusNotFound)
}

func TestDeleteCommentFloorsCounterAndToleratesMissingPost(t *testing.T) {
	env := newTestEnv(t)
	author, _ := env.createUser(t, "rosa", "rosa@example.com", false)
	_, adminToken := env.createUser(t, "Dean", "dean@example.edu", true)
	post := env.createPost(t, author.ID, "sunset", []string{"f"})

	// counter already at zero: deletion must not drive it negative
	zeroed := models.Comment{PostID: post.ID, UserID: author.ID, Text: "stray"}
	if err := env.db.Create(&zeroed).Error; err != nil {
		t.Fatalf("seed comment: %v", err)
	}
	w, _ := env.doJSON(t, http.MethodDelete, fmt.Sprintf("/api/v1/comments/%d", zeroed.ID), adminToken, nil)
	wantStatus(t, w, http.StatusOK)
	var fresh models.Post
	env.db.First(&fresh, post.ID)
	if fresh.CommentCount != 0 {
		t.Fatalf("comment_count = %d, want 0", fresh.CommentCount)
	}

	// comment whose parent post is already gone
	orphan := models.Comment{PostID: 424242, UserID: author.ID, Text: "orphan"}
	if err := env.db.Create(&orphan).Error; err != nil {
		t.Fatalf("seed orphan comment: %v", err)
	}
	w, _ = env.doJSON(t, http.MethodDelete, fmt.Sprintf("/api/v1/comments/%d", orphan.ID), adminToken, nil)
	wantStatus(t, w, http.StatusOK)
}

func TestRemoveCommentOnlyOnce(t *testing.T) {
	env := newTestEnv(t)
	author, _ := env.createUser(t, "rosa", "rosa@example.com", false)
	post := env.createPost(t, author.ID, "sunset", []string{"f"})

	comment := models.Comment{PostID: post.ID, UserID: author.ID, Text: "hi"}
	if err := env.db.Create(&comment).Error; err != nil {
		t.Fatalf("seed comment: %v", err)
	}

	removed, err := removeComment(env.db, comment.ID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !removed {
		t.Fatal("first removal must report the row as removed")
	}

	removed, err = removeComment(env.db, comment.ID)
	if err != nil {
		t.Fatalf("repeat remove: %v", err)
	}
	if removed {
		t.Fatal("removal of an absent row must report false")
	}
}

func TestCommentPreview(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"short", "short"},
		{strings.Repeat("x", commentPreviewLength), strings.Repeat("x", commentPreviewLength)},
		{strings.Repeat("x", commentPreviewLength+1), strings.Repeat("x", commentPreviewLength) + "..."},
		{strings.Repeat("ñ", commentPreviewLength+5), strings.Repeat("ñ", commentPreviewLength) + "..."},
	}
	for _, tc := range cases {
		if got := commentPreview(tc.in); got != tc.want {
			t.Errorf("commentPreview(%d chars) = %q, want %q", len([]rune(tc.in)), got, tc.want)
		}
	}
}
