package handler

import (
	"net/http"
	"strings"
	"testing"
)

func TestAdminRoutesRejectNonAdmin(t *testing.T) {
	env := newTestEnv(t)
	user := env.signUp(t, "A", "a1", "a@b.com", "secret1", "")
	article := env.createArticle(t, user.Token, "Mine", "body", "pending")

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/admin/get-users"},
		{http.MethodGet, "/admin/statistics"},
		{http.MethodGet, "/admin/pending-articles"},
		{http.MethodPut, "/admin/approve-article/" + article.ID},
	}

	for _, route := range paths {
		resp := env.do(t, route.method, route.path, user.Token, nil)
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("%s %s: expected 403 for a regular user, got %d",
				route.method, route.path, resp.StatusCode)
		}
		resp.Body.Close()
	}

	// No token at all is a 401, not a 403.
	resp := env.do(t, http.MethodGet, "/admin/get-users", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestApproveArticle(t *testing.T) {
	env := newTestEnv(t)
	admin := env.signUp(t, "Admin", "boss", "boss@example.com", "secret1", "admin")
	user := env.signUp(t, "A", "a1", "a@b.com", "secret1", "")
	article := env.createArticle(t, user.Token, "Mine", "body", "pending")

	resp := env.do(t, http.MethodPut, "/admin/approve-article/"+article.ID, admin.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	type approveResponse struct {
		Article     articleResponse `json:"article"`
		EmailStatus string          `json:"emailStatus"`
	}
	result := decodeBody[approveResponse](t, resp)

	if result.Article.Status != "approved" || !result.Article.IsApproved {
		t.Fatalf("expected status approved with isApproved true, got %+v", result.Article)
	}
	if result.EmailStatus != "sent" {
		t.Fatalf("expected emailStatus sent, got %q", result.EmailStatus)
	}
	if len(env.mailer.sent) != 1 {
		t.Fatalf("expected exactly one email, got %d", len(env.mailer.sent))
	}

	var approved int
	for _, notification := range env.notifications.notifications {
		if notification.Type == "article_approved" {
			approved++
		}
	}
	if approved != 1 {
		t.Fatalf("expected exactly one article_approved notification, got %d", approved)
	}
}

func TestApproveArticleEmailFailureStillApproves(t *testing.T) {
	env := newTestEnv(t)
	admin := env.signUp(t, "Admin", "boss", "boss@example.com", "secret1", "admin")
	user := env.signUp(t, "A", "a1", "a@b.com", "secret1", "")
	article := env.createArticle(t, user.Token, "Mine", "body", "pending")

	env.mailer.fail = true

	resp := env.do(t, http.MethodPut, "/admin/approve-article/"+article.ID, admin.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	type approveResponse struct {
		Article     articleResponse `json:"article"`
		EmailStatus string          `json:"emailStatus"`
	}
	result := decodeBody[approveResponse](t, resp)

	if result.Article.Status != "approved" {
		t.Fatalf("expected the approval to survive the email failure, got %+v", result.Article)
	}
	if !strings.HasPrefix(result.EmailStatus, "failed: ") {
		t.Fatalf("expected a failed emailStatus, got %q", result.EmailStatus)
	}
}

func TestApproveArticleNotFound(t *testing.T) {
	env := newTestEnv(t)
	admin := env.signUp(t, "Admin", "boss", "boss@example.com", "secret1", "admin")

	resp := env.do(t, http.MethodPut, "/admin/approve-article/65b2f0c4a7d9e8b1c3f4a5b6", admin.Token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestDeclineArticle(t *testing.T) {
	env := newTestEnv(t)
	admin := env.signUp(t, "Admin", "boss", "boss@example.com", "secret1", "admin")
	user := env.signUp(t, "A", "a1", "a@b.com", "secret1", "")
	article := env.createArticle(t, user.Token, "Mine", "body", "pending")

	resp := env.do(t, http.MethodPut, "/admin/articles/"+article.ID+"/decline", admin.Token, map[string]string{
		"reason": "duplicate submission",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	declined := decodeBody[articleResponse](t, resp)

	if declined.Status != "rejected" || declined.IsApproved {
		t.Fatalf("expected a rejected, unapproved article, got %+v", declined)
	}
	if declined.RejectionReason != "duplicate submission" {
		t.Fatalf("expected the rejection reason to be stored, got %q", declined.RejectionReason)
	}

	var rejected int
	for _, notification := range env.notifications.notifications {
		if notification.Type == "article_rejected" {
			rejected++
		}
	}
	if rejected != 1 {
		t.Fatalf("expected exactly one article_rejected notification, got %d", rejected)
	}
}

func TestDeclineArticleWithoutReason(t *testing.T) {
	env := newTestEnv(t)
	admin := env.signUp(t, "Admin", "boss", "boss@example.com", "secret1", "admin")
	user := env.signUp(t, "A", "a1", "a@b.com", "secret1", "")
	article := env.createArticle(t, user.Token, "Mine", "body", "pending")

	resp := env.do(t, http.MethodPut, "/admin/articles/"+article.ID+"/decline", admin.Token, map[string]string{
		"reason": "   ",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for a blank reason, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// The article must be untouched.
	stored, err := env.articles.GetArticle(t.Context(), article.ID)
	if err != nil {
		t.Fatalf("failed to fetch article: %v", err)
	}
	if stored.Status != "pending" || stored.RejectionReason != "" {
		t.Fatalf("expected no mutation on a rejected decline, got %+v", stored)
	}
	if len(env.notifications.notifications) != 0 {
		t.Fatalf("expected no notifications, got %d", len(env.notifications.notifications))
	}
}

func TestAdminStatistics(t *testing.T) {
	env := newTestEnv(t)
	admin := env.signUp(t, "Admin", "boss", "boss@example.com", "secret1", "admin")
	user := env.signUp(t, "A", "a1", "a@b.com", "secret1", "")
	env.signUp(t, "B", "b1", "b@c.com", "secret1", "")

	env.createArticle(t, user.Token, "Draft", "body", "")
	env.createArticle(t, user.Token, "Pending", "body", "pending")
	approved := env.createArticle(t, user.Token, "Approved", "body", "pending")

	resp := env.do(t, http.MethodPut, "/admin/approve-article/"+approved.ID, admin.Token, nil)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/admin/statistics", admin.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	stats := decodeBody[statisticsResponse](t, resp)

	if stats.TotalArticles != 3 || stats.PendingArticles != 1 || stats.ApprovedArticles != 1 {
		t.Fatalf("unexpected article counts: %+v", stats)
	}
	// Admins are excluded from the user count.
	if stats.Users != 2 {
		t.Fatalf("expected 2 non-admin users, got %d", stats.Users)
	}
}

func TestAdminGetUsersWithArticleCounts(t *testing.T) {
	env := newTestEnv(t)
	admin := env.signUp(t, "Admin", "boss", "boss@example.com", "secret1", "admin")
	user := env.signUp(t, "A", "a1", "a@b.com", "secret1", "")

	env.createArticle(t, user.Token, "One", "body", "")
	env.createArticle(t, user.Token, "Two", "body", "")

	resp := env.do(t, http.MethodGet, "/admin/get-users", admin.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	users := decodeBody[[]adminUserResponse](t, resp)

	counts := make(map[string]int64, len(users))
	for _, entry := range users {
		counts[entry.UserName] = entry.ArticleCount
	}
	if counts["a1"] != 2 {
		t.Fatalf("expected 2 articles for a1, got %d", counts["a1"])
	}
	if counts["boss"] != 0 {
		t.Fatalf("expected 0 articles for boss, got %d", counts["boss"])
	}
}

func TestAdminGetArticlesByUser(t *testing.T) {
	env := newTestEnv(t)
	admin := env.signUp(t, "Admin", "boss", "boss@example.com", "secret1", "admin")
	user := env.signUp(t, "A", "a1", "a@b.com", "secret1", "")
	other := env.signUp(t, "B", "b1", "b@c.com", "secret1", "")

	env.createArticle(t, user.Token, "Mine", "body", "")
	env.createArticle(t, other.Token, "Theirs", "body", "")

	resp := env.do(t, http.MethodGet, "/admin/get-articles/"+user.User.ID, admin.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	articles := decodeBody[[]articleResponse](t, resp)
	if len(articles) != 1 || articles[0].Title != "Mine" {
		t.Fatalf("expected only a1's articles, got %+v", articles)
	}
}

func TestAdminPendingAndApprovedArticles(t *testing.T) {
	env := newTestEnv(t)
	admin := env.signUp(t, "Admin", "boss", "boss@example.com", "secret1", "admin")
	user := env.signUp(t, "A", "a1", "a@b.com", "secret1", "")

	env.createArticle(t, user.Token, "Pending one", "body", "pending")
	approved := env.createArticle(t, user.Token, "Approved one", "body", "pending")

	resp := env.do(t, http.MethodPut, "/admin/approve-article/"+approved.ID, admin.Token, nil)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/admin/pending-articles", admin.Token, nil)
	pending := decodeBody[[]articleResponse](t, resp)
	if len(pending) != 1 || pending[0].Title != "Pending one" {
		t.Fatalf("unexpected pending list: %+v", pending)
	}

	resp = env.do(t, http.MethodGet, "/admin/approved-articles", admin.Token, nil)
	approvedList := decodeBody[[]articleResponse](t, resp)
	if len(approvedList) != 1 || approvedList[0].Title != "Approved one" {
		t.Fatalf("unexpected approved list: %+v", approvedList)
	}
}

func TestAdminUpdateArticleBypassesOwnership(t *testing.T) {
	env := newTestEnv(t)
	admin := env.signUp(t, "Admin", "boss", "boss@example.com", "secret1", "admin")
	user := env.signUp(t, "A", "a1", "a@b.com", "secret1", "")
	article := env.createArticle(t, user.Token, "Mine", "body", "")

	resp := env.do(t, http.MethodPut, "/admin/update-article/"+article.ID, admin.Token, map[string]string{
		"title": "Edited by staff",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	updated := decodeBody[articleResponse](t, resp)
	if updated.Title != "Edited by staff" {
		t.Fatalf("expected the admin edit to apply, got %q", updated.Title)
	}
}

func TestAdminDeleteUserCascades(t *testing.T) {
	env := newTestEnv(t)
	admin := env.signUp(t, "Admin", "boss", "boss@example.com", "secret1", "admin")
	user := env.signUp(t, "A", "a1", "a@b.com", "secret1", "")
	article := env.createArticle(t, user.Token, "Mine", "body", "pending")

	resp := env.do(t, http.MethodPut, "/admin/approve-article/"+article.ID, admin.Token, nil)
	resp.Body.Close()

	resp = env.do(t, http.MethodDelete, "/admin/delete-user/"+user.User.ID, admin.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	if len(env.articles.articles) != 0 {
		t.Fatalf("expected the user's articles to be deleted, %d remain", len(env.articles.articles))
	}
	if len(env.notifications.notifications) != 0 {
		t.Fatalf("expected the user's notifications to be deleted, %d remain",
			len(env.notifications.notifications))
	}

	// Their token no longer works.
	resp = env.do(t, http.MethodGet, "/users/getProfile", user.Token, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a deleted user, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestAdminDeleteArticle(t *testing.T) {
	env := newTestEnv(t)
	admin := env.signUp(t, "Admin", "boss", "boss@example.com", "secret1", "admin")
	user := env.signUp(t, "A", "a1", "a@b.com", "secret1", "")
	article := env.createArticle(t, user.Token, "Mine", "body", "")

	resp := env.do(t, http.MethodDelete, "/admin/delete-article/"+article.ID, admin.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/articles/get-my-article", user.Token, nil)
	articles := decodeBody[[]articleResponse](t, resp)
	if len(articles) != 0 {
		t.Fatalf("expected no articles left, got %d", len(articles))
	}
}
