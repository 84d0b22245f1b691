package oracles

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Oracle struct {
	Name string
	SQL  string
}

func All() []Oracle {
	return []Oracle{
		{
			Name: "O1_paid_never_pending",
			SQL:  `SELECT id, paid, status FROM jobs WHERE paid AND status = 'PENDING'`,
		},
		{
			Name: "O2_paid_implies_price",
			SQL:  `SELECT id FROM jobs WHERE paid AND price IS NULL`,
		},
		{
			Name: "O3_price_nonnegative",
			SQL:  `SELECT id, price FROM jobs WHERE price < 0`,
		},
		{
			Name: "O4_earnings_never_overcredited",
			SQL: `SELECT u.id, u.earnings, COALESCE(SUM(j.price), 0) AS expected
                  FROM users u
                  LEFT JOIN jobs j ON j.freelancer_id = u.id AND j.status = 'COMPLETED' AND j.paid
                  WHERE u.role = 'FREELANCER'
                  GROUP BY u.id, u.earnings
                  HAVING u.earnings > COALESCE(SUM(j.price), 0)`,
		},
		{
			// Crediting happens right after the completion write, so only
			// settled rows count toward the lower bound.
			Name: "O5_earnings_eventually_credited",
			SQL: `SELECT u.id, u.earnings, COALESCE(SUM(j.price), 0) AS expected
                  FROM users u
                  LEFT JOIN jobs j ON j.freelancer_id = u.id AND j.status = 'COMPLETED' AND j.paid
                      AND j.updated_at < NOW() - INTERVAL '10 seconds'
                  WHERE u.role = 'FREELANCER'
                  GROUP BY u.id, u.earnings
                  HAVING u.earnings < COALESCE(SUM(j.price), 0)`,
		},
		{
			Name: "O6_completed_has_freelancer",
			SQL:  `SELECT id FROM jobs WHERE status = 'COMPLETED' AND freelancer_id IS NULL`,
		},
		{
			Name: "O7_candidate_quiz_single",
			SQL: `SELECT user_id, COUNT(*) FROM candidate_quizzes
                  GROUP BY user_id HAVING COUNT(*) > 1`,
		},
		{
			Name: "O8_inactive_holds_no_work",
			SQL: `SELECT j.id, j.freelancer_id FROM jobs j
                  JOIN users u ON u.id = j.freelancer_id
                  WHERE j.status IN ('PENDING', 'ACTIVE') AND u.role = 'FREELANCER' AND NOT u.active`,
		},
	}
}

// Run executes all oracles and returns the first failure (name and sample row text) or empty name if all pass.
func Run(ctx context.Context, pool *pgxpool.Pool) (string, string, error) {
	for _, o := range All() {
		rows, err := pool.Query(ctx, o.SQL)
		if err != nil {
			return o.Name, "", fmt.Errorf("oracle %s: %w", o.Name, err)
		}
		has := rows.Next()
		if has {
			vals, err := rows.Values()
			rows.Close()
			if err != nil {
				return o.Name, "", err
			}
			return o.Name, fmt.Sprintf("%v", vals), nil
		}
		rows.Close()
	}
	return "", "", nil
}
