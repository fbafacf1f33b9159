package domain

// Dashboard names one of the two dashboards
type Dashboard string

const (
	DashboardOverview    Dashboard = "overview"
	DashboardExploration Dashboard = "exploration"
)

// Insight is a one-line caption derived from a result
type Insight struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	NoData bool   `json:"no_data,omitempty"`
}

// OverviewView is everything the overview dashboard shows for a selection
type OverviewView struct {
	Selection    FilterSelection `json:"selection"`
	KPIs         KPIs            `json:"kpis"`
	SeasonMeans  GroupResult     `json:"season_means"`
	DayTypeMeans GroupResult     `json:"working_day_means"`
	Series       []DailyPoint    `json:"series"`
	Insights     []Insight       `json:"insights"`
	Charts       []ChartSpec     `json:"charts"`
}

// ExplorationView is everything the exploration dashboard shows for a selection
type ExplorationView struct {
	Selection   FilterSelection   `json:"selection"`
	KPIs        KPIs              `json:"kpis"`
	MonthMeans  GroupResult       `json:"month_means"`
	Correlation CorrelationMatrix `json:"correlation"`
	Top         []DailyRecord     `json:"top"`
	Cluster     ClusterResult     `json:"cluster"`
	Elbow       ElbowResult       `json:"elbow"`
	Insights    []Insight         `json:"insights"`
	Charts      []ChartSpec       `json:"charts"`
}
