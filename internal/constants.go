package internal

const (
	COOKIE_ID_TOKEN_NAME      = "outreach_id_token"
	COOKIE_REFRESH_TOKEN_NAME = "outreach_refresh_token"
	COOKIE_REDIRECT_NAME      = "outreach_redirect_to"
)
