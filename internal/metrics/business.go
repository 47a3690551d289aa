package metrics

// RecordStageCacheHit increments the stage registry cache hit counter
func (m *Metrics) RecordStageCacheHit() {
	m.safeExecute("RecordStageCacheHit", func() {
		m.StageCacheHits.Inc()
	})
}

// RecordStageCacheMiss increments the stage registry cache miss counter
func (m *Metrics) RecordStageCacheMiss() {
	m.safeExecute("RecordStageCacheMiss", func() {
		m.StageCacheMisses.Inc()
	})
}

// SetStageDepartmentsCached sets the cached-department gauge
func (m *Metrics) SetStageDepartmentsCached(count int) {
	m.safeExecute("SetStageDepartmentsCached", func() {
		m.StageDepartmentsCached.Set(float64(count))
	})
}

// RecordSessionCacheHit increments the user cache hit counter
func (m *Metrics) RecordSessionCacheHit() {
	m.safeExecute("RecordSessionCacheHit", func() {
		m.SessionCacheHits.Inc()
	})
}

// RecordSessionCacheMiss increments the user cache miss counter
func (m *Metrics) RecordSessionCacheMiss() {
	m.safeExecute("RecordSessionCacheMiss", func() {
		m.SessionCacheMisses.Inc()
	})
}

// IncrementTransitionsRequested increments the stage transition counter
func (m *Metrics) IncrementTransitionsRequested() {
	m.safeExecute("IncrementTransitionsRequested", func() {
		m.TransitionsRequestedTotal.Inc()
	})
}

// IncrementDevicesRegistered increments the device registration counter
func (m *Metrics) IncrementDevicesRegistered() {
	m.safeExecute("IncrementDevicesRegistered", func() {
		m.DevicesRegisteredTotal.Inc()
	})
}

// IncrementNotificationsDelivered increments the delivery counter
func (m *Metrics) IncrementNotificationsDelivered() {
	m.safeExecute("IncrementNotificationsDelivered", func() {
		m.NotificationsDelivered.Inc()
	})
}

// SetPushConnectionsActive sets the active websocket connection gauge
func (m *Metrics) SetPushConnectionsActive(count int) {
	m.safeExecute("SetPushConnectionsActive", func() {
		m.PushConnectionsActive.Set(float64(count))
	})
}
