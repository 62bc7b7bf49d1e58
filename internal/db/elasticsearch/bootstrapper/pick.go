package bootstrapper

const PickIndexName = "pick_index"

var pickIndex = map[string]interface{}{
	"settings": map[string]interface{}{
		"number_of_shards":   1,
		"number_of_replicas": 1,
	},
	"mappings": map[string]interface{}{
		"properties": map[string]interface{}{
			"waveform_id": map[string]interface{}{
				"properties": map[string]interface{}{
					"network_code": map[string]interface{}{
						"type": "keyword",
					},
					"station_code": map[string]interface{}{
						"type": "keyword",
					},
					"location_code": map[string]interface{}{
						"type": "keyword",
					},
					"channel_code": map[string]interface{}{
						"type": "keyword",
					},
				},
			},
			"time": map[string]interface{}{
				"type": "date",
			},
			"phase_hint": map[string]interface{}{
				"type": "keyword",
			},
			"coordinates": map[string]interface{}{
				"properties": map[string]interface{}{
					"latitude": map[string]interface{}{
						"type": "double",
					},
					"longitude": map[string]interface{}{
						"type": "double",
					},
					"elevation": map[string]interface{}{
						"type": "double",
					},
				},
			},
		},
	},
}
