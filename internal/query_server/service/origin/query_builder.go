package origin

func getOriginsQuery(params SearchParams) map[string]interface{} {
	var mustClauses []map[string]interface{}

	if params.StartTime != nil || params.EndTime != nil {
		timeRange := map[string]interface{}{}
		if params.StartTime != nil {
			timeRange["gte"] = *params.StartTime
		}
		if params.EndTime != nil {
			timeRange["lte"] = *params.EndTime
		}
		mustClauses = append(mustClauses, map[string]interface{}{
			"range": map[string]interface{}{
				"time": timeRange,
			},
		})
	}

	if params.ClusterId != nil {
		mustClauses = append(mustClauses, map[string]interface{}{
			"term": map[string]interface{}{
				"cluster_id": *params.ClusterId,
			},
		})
	}

	query := map[string]interface{}{
		"match_all": map[string]interface{}{},
	}
	if len(mustClauses) > 0 {
		query = map[string]interface{}{
			"bool": map[string]interface{}{
				"must": mustClauses,
			},
		}
	}

	return map[string]interface{}{
		"query": query,
		"sort": []map[string]interface{}{
			{"creation_info.creation_time": map[string]interface{}{"order": "desc"}},
		},
	}
}
