//go:build integration

package router

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mediocusto/internal/config"
	"mediocusto/internal/infra"
	"mediocusto/internal/middleware"
	"mediocusto/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

const e2eSecret = "e2e-secret"

// ── Helpers ──────────────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	db     *gorm.DB
	rdb    *redis.Client
	token  string
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("mediocusto_test"),
		tcPostgres.WithUsername("mediocusto"),
		tcPostgres.WithPassword("mediocusto"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:               8000,
		Env:                "test",
		RateLimitPerMinute: 1000,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		JWTSecret:          e2eSecret,
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL, infra.PoolConfig{MaxOpenConns: 5, MaxIdleConns: 2})
	require.NoError(t, err)
	// idempotent
	require.NoError(t, infra.RunMigrations(db))

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	routerCtx, cancel := context.WithCancel(ctx)
	t.Cleanup(cancel)
	srv := httptest.NewServer(New(routerCtx, cfg, db, rdb))
	t.Cleanup(srv.Close)

	claims := middleware.JWTClaims{
		UserID:   uuid.NewString(),
		Username: "e2e",
		Rol:      middleware.RolAdministrador,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(e2eSecret))
	require.NoError(t, err)

	return &testEnv{server: srv, db: db, rdb: rdb, token: tok}
}

func (env *testEnv) do(t *testing.T, method, path string, body any, dest any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, env.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+env.token)

	resp, err := env.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if dest != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
	}
	return resp.StatusCode
}

func d(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func seed(t *testing.T, db *gorm.DB) (antiga, nova model.EntradaNF) {
	t.Helper()
	require.NoError(t, db.Create(&model.Produto{Nome: "Fio", PercentualCobre: d("10")}).Error)
	require.NoError(t, db.Create(&model.Material{Nome: "Cobre Mel", Grupo: "cobre", Valor: d("2")}).Error)

	jan := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	fev := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	antiga = model.EntradaNF{
		Data: &jan, NF: "100", Produto: "Fio", Material1: "Cobre Mel", ValorUnitario1: d("3"),
		PesoLiquido: d("1000"), PesoIntegral: d("800"), ValorMaoObraTM: d("0.5"),
	}
	nova = model.EntradaNF{
		Data: &fev, NF: "101", Produto: "Fio (3,17mm)", Material1: "Cobre Mel",
		PesoLiquido: d("50"), PesoIntegral: d("50"),
	}
	require.NoError(t, db.Create(&antiga).Error)
	require.NoError(t, db.Create(&nova).Error)
	return antiga, nova
}

type linha struct {
	EntradaID         string           `json:"entrada_id"`
	NF                string           `json:"nf"`
	QuantidadeEstoque *decimal.Decimal `json:"quantidade_estoque"`
	QtdCobre          *decimal.Decimal `json:"qtd_cobre"`
	MateriaPrima      *decimal.Decimal `json:"materia_prima"`
	CustoTotal        *decimal.Decimal `json:"custo_total"`
}

func listar(t *testing.T, env *testEnv) map[string]linha {
	t.Helper()
	var body struct {
		Data []linha `json:"data"`
	}
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/v1/calculo-nfs", nil, &body))
	out := make(map[string]linha, len(body.Data))
	for _, l := range body.Data {
		out[l.NF] = l
	}
	return out
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_ListarEditarDistribuir(t *testing.T) {
	env := setupTestEnv(t)
	antiga, nova := seed(t, env.db)

	// 1. listing creates the ledger rows, seeds stock and fills derived fields
	linhas := listar(t, env)
	require.Contains(t, linhas, "100")
	l := linhas["100"]
	require.NotNil(t, l.QuantidadeEstoque)
	assert.True(t, decimal.NewFromInt(1000).Equal(*l.QuantidadeEstoque))
	require.NotNil(t, l.QtdCobre)
	assert.True(t, decimal.NewFromInt(10).Equal(*l.QtdCobre))
	require.NotNil(t, l.CustoTotal)
	assert.True(t, decimal.NewFromInt(130).Equal(*l.CustoTotal))

	// 2. listing is idempotent
	assert.Equal(t, linhas, listar(t, env))

	// 3. hand edit pins the field and recomputes the rest
	var editada linha
	code := env.do(t, http.MethodPatch, "/v1/calculo-nfs/"+antiga.ID.String(),
		map[string]any{"campos": map[string]string{"qtd_cobre": "12,5"}}, &editada)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, decimal.RequireFromString("37.5").Equal(*editada.MateriaPrima))

	// 4. single-entry subtraction beyond stock fails and changes nothing
	var erro map[string]any
	code = env.do(t, http.MethodPost, "/v1/calculo-nfs/distribuir",
		map[string]string{"alvo": nova.ID.String(), "valor": "60", "operacao": "subtrair"}, &erro)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "50", erro["disponivel"])

	// 5. product-wide subtraction: oldest entry first, history published
	sub := env.rdb.Subscribe(context.Background(), infra.CanalHistorico)
	defer sub.Close()
	_, err := sub.Receive(context.Background())
	require.NoError(t, err)

	var dist struct {
		AplicadoTotal decimal.Decimal `json:"aplicado_total"`
		Pendente      decimal.Decimal `json:"pendente"`
	}
	code = env.do(t, http.MethodPost, "/v1/calculo-nfs/distribuir",
		map[string]string{"alvo": "fio", "valor": "1020", "operacao": "subtrair"}, &dist)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, decimal.NewFromInt(1020).Equal(dist.AplicadoTotal))
	assert.True(t, dist.Pendente.IsZero())

	linhas = listar(t, env)
	assert.True(t, decimal.Zero.Equal(*linhas["100"].QuantidadeEstoque))
	assert.True(t, decimal.NewFromInt(30).Equal(*linhas["101"].QuantidadeEstoque))

	select {
	case msg := <-sub.Channel():
		assert.Equal(t, infra.CanalHistorico, msg.Channel)
	case <-time.After(5 * time.Second):
		t.Fatal("notificação de histórico não recebida")
	}

	// 6. history lists the operation
	var hist struct {
		Data  []map[string]any `json:"data"`
		Total int64            `json:"total"`
	}
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/v1/calculo-nfs/historico", nil, &hist))
	require.Equal(t, int64(1), hist.Total)
	assert.Equal(t, "e2e", hist.Data[0]["usuario"])
	assert.Equal(t, "subtrair", hist.Data[0]["tipo"])
}

func TestE2E_Health(t *testing.T) {
	env := setupTestEnv(t)

	resp, err := env.server.Client().Get(env.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestE2E_EntradasCriarListarExcluir(t *testing.T) {
	env := setupTestEnv(t)
	seed(t, env.db)

	var criada struct {
		ID string `json:"id"`
		NF string `json:"nf"`
	}
	code := env.do(t, http.MethodPost, "/v1/entradas", map[string]any{"fields": map[string]any{
		"nf": "200", "produto": "Fio", "peso_liquido": "75", "material_1": "Cobre Mel",
	}}, &criada)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "200", criada.NF)

	// undated entries come last
	var lista struct {
		Data  []struct{ NF string } `json:"data"`
		Total int64                 `json:"total"`
	}
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/v1/entradas?limit=2", nil, &lista))
	assert.Equal(t, int64(3), lista.Total)
	require.Len(t, lista.Data, 2)
	assert.Equal(t, "101", lista.Data[0].NF)
	assert.Equal(t, "100", lista.Data[1].NF)

	require.Contains(t, listar(t, env), "200")

	var excluidas struct {
		Removidas int64 `json:"removidas"`
	}
	code = env.do(t, http.MethodPost, "/v1/entradas/excluir", map[string]any{"ids": []string{criada.ID}}, &excluidas)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(1), excluidas.Removidas)

	var n int64
	require.NoError(t, env.db.Model(&model.CalculoNF{}).Where("entrada_id = ?", criada.ID).Count(&n).Error)
	assert.Zero(t, n)
	assert.NotContains(t, listar(t, env), "200")
}
