package metrics

// RecordTempStore publishes temp store occupancy measured by a sweep.
func RecordTempStore(files int, bytes int64) {
	TempStoreFiles.Set(float64(files))
	TempStoreBytes.Set(float64(bytes))
}
