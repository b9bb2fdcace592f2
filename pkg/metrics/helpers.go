package metrics

func RecordCacheHit(keyPrefix string) {
	RedisCacheHits.WithLabelValues(keyPrefix).Inc()
}

func RecordCacheMiss(keyPrefix string) {
	RedisCacheMisses.WithLabelValues(keyPrefix).Inc()
}

func RecordKafkaMessageProduced(topic string) {
	KafkaMessagesProduced.WithLabelValues(topic).Inc()
}

func RecordMainPageRefresh(success bool) {
	status := "success"
	if !success {
		status = "failed"
	}
	MainPageRefreshes.WithLabelValues(status).Inc()
}
