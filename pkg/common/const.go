package common

const (
	KEY_FETCH_CACHE     = "fetch:%s"
	KEY_LATEST_MARKET   = "latest_market_score"
	KEY_LATEST_ENTITY   = "latest_entity_score:%s"
)

const (
	KEY_LOG_HOOK_SEND_ALERT = "send_alert"
)
