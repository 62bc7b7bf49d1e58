package bootstrapper

const OriginIndexName = "origin_index"

var originIndex = map[string]interface{}{
	"settings": map[string]interface{}{
		"number_of_shards":   1,
		"number_of_replicas": 1,
	},
	"mappings": map[string]interface{}{
		"properties": map[string]interface{}{
			"cluster_id": map[string]interface{}{
				"type": "long",
			},
			"latitude": map[string]interface{}{
				"type": "double",
			},
			"longitude": map[string]interface{}{
				"type": "double",
			},
			"depth": map[string]interface{}{
				"type": "double",
			},
			"time": map[string]interface{}{
				"type": "date",
			},
			"method_id": map[string]interface{}{
				"type": "keyword",
			},
			"type": map[string]interface{}{
				"type": "keyword",
			},
			"evaluation_mode": map[string]interface{}{
				"type": "keyword",
			},
			"evaluation_status": map[string]interface{}{
				"type": "keyword",
			},
			"creation_info": map[string]interface{}{
				"properties": map[string]interface{}{
					"agency_id": map[string]interface{}{
						"type": "keyword",
					},
					"author": map[string]interface{}{
						"type": "keyword",
					},
					"creation_time": map[string]interface{}{
						"type": "date",
					},
					"modification_time": map[string]interface{}{
						"type": "date",
					},
				},
			},
			"arrivals": map[string]interface{}{
				"type": "nested",
				"properties": map[string]interface{}{
					"pick_id": map[string]interface{}{
						"type": "keyword",
					},
					"phase": map[string]interface{}{
						"type": "keyword",
					},
					"weight": map[string]interface{}{
						"type": "double",
					},
				},
			},
		},
	},
}
