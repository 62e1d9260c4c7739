package mdp

// Fantasy is the deterministic Town/Castle/Dungeon/Market world where every
// state offers a fight or a trade.
func Fantasy() *Model {
	states := []State{"Town", "Castle", "Dungeon", "Market"}
	actions := []Action{"fight", "trade"}
	to := func(next State, reward float64) []Outcome {
		return []Outcome{{Probability: 1, Next: next, Reward: reward}}
	}
	m, err := NewModel(states, actions, map[Key][]Outcome{
		{"Town", "fight"}:    to("Dungeon", 5),
		{"Town", "trade"}:    to("Market", 3),
		{"Castle", "fight"}:  to("Dungeon", 6),
		{"Castle", "trade"}:  to("Market", 4),
		{"Dungeon", "fight"}: to("Castle", 7),
		{"Dungeon", "trade"}: to("Market", 2),
		{"Market", "fight"}:  to("Town", 3),
		{"Market", "trade"}:  to("Market", 0),
	})
	if err != nil {
		panic(err)
	}
	return m
}

// Weather is the umbrella world: the weather evolves on its own and the
// action only changes what today's weather costs.
func Weather() *Model {
	states := []State{"Rainy", "Sunny", "Cloudy"}
	actions := []Action{"Umbrella", "No Umbrella"}
	table := map[State]map[State]float64{
		"Rainy":  {"Rainy": 0.5, "Sunny": 0.2, "Cloudy": 0.3},
		"Sunny":  {"Rainy": 0.1, "Sunny": 0.7, "Cloudy": 0.2},
		"Cloudy": {"Rainy": 0.3, "Sunny": 0.3, "Cloudy": 0.4},
	}
	m, err := FromStateTable(states, actions, table, weatherReward)
	if err != nil {
		panic(err)
	}
	return m
}

func weatherReward(state State, action Action, next State) float64 {
	umbrella := action == "Umbrella"
	switch state {
	case "Rainy":
		if umbrella {
			return -1
		}
		return -10 // Caught in the rain
	case "Sunny":
		if umbrella {
			return -1
		}
		return 2
	default:
		if umbrella {
			return 0
		}
		return -2
	}
}
