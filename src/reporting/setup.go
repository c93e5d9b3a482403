package reporting

import (
	"context"
	"fmt"
	"net/http"

	"earningsbot/src/model"
)

// SetupDatabases creates the positions and calendar databases under a parent page.
// Each call creates new databases.
func (n *NotionReporter) SetupDatabases(ctx context.Context, parentPageID string) (Databases, error) {
	dollar := map[string]interface{}{"number": map[string]string{"format": "dollar"}}
	number := map[string]interface{}{"number": map[string]string{"format": "number"}}
	empty := map[string]interface{}{}

	positions := map[string]interface{}{
		"Ticker":      map[string]interface{}{"title": empty},
		"Entry Price": dollar,
		"Entry Date":  map[string]interface{}{"date": empty},
		"Stop":        dollar,
		"Day":         number,
		"Qty":         number,
	}

	calendar := map[string]interface{}{
		"Ticker": map[string]interface{}{"title": empty},
		"Date":   map[string]interface{}{"date": empty},
		"Timing": selectOptions(
			option{model.TimingBMO, "blue"}, option{model.TimingAMC, "orange"}, option{model.TimingUnknown, "gray"}),
		"Signal":       selectOptions(option{"BUY", "green"}, option{"skip", "gray"}),
		"EPS Estimate": number,
		"Rev Estimate": number,
		"EPS Beat %":   number,
		"Move %":       number,
		"Entry Price":  dollar,
		"Stop Price":   dollar,
	}
	for _, name := range model.FilterNames {
		calendar[name] = map[string]interface{}{"checkbox": empty}
	}

	var dbs Databases
	var err error
	if dbs.PositionsDBID, err = n.createDatabase(ctx, parentPageID, "Open Positions", positions); err != nil {
		return dbs, err
	}
	if dbs.CalendarDBID, err = n.createDatabase(ctx, parentPageID, "Earnings Calendar", calendar); err != nil {
		return dbs, err
	}
	n.dbs = dbs
	return dbs, nil
}

type option struct{ name, color string }

func selectOptions(opts ...option) interface{} {
	list := make([]map[string]string, 0, len(opts))
	for _, o := range opts {
		list = append(list, map[string]string{"name": o.name, "color": o.color})
	}
	return map[string]interface{}{"select": map[string]interface{}{"options": list}}
}

func (n *NotionReporter) createDatabase(ctx context.Context, parentPageID, title string, properties map[string]interface{}) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	err := n.send(ctx, http.MethodPost, "/databases", map[string]interface{}{
		"parent":     map[string]string{"type": "page_id", "page_id": parentPageID},
		"title":      []interface{}{map[string]interface{}{"text": map[string]string{"content": title}}},
		"properties": properties,
	}, &out)
	if err != nil {
		return "", fmt.Errorf("create %s database: %w", title, err)
	}
	return out.ID, nil
}
