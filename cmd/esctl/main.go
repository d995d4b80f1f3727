package main

import (
	"fmt"
	"os"

	"comments-go/internal/config"
	"comments-go/internal/infra/database"
	infraES "comments-go/internal/infra/elasticsearch"
	"comments-go/internal/repository"
	"comments-go/internal/service"
	"comments-go/pkg/logger"
	"comments-go/pkg/utils"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "esctl",
		Usage: "评论搜索索引管理",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "configs/config.yaml",
				Usage:   "配置文件路径",
				EnvVars: []string{"CONFIG_PATH"},
			},
		},
		Before: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}
			return logger.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.FilePath)
		},
		After: func(*cli.Context) error {
			logger.Sync()
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "create-index",
				Usage: "创建带版本号的物理索引并把别名指向它",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Usage: "先删除已存在的物理索引"},
				},
				Action: createIndex,
			},
			{
				Name:  "sync",
				Usage: "按 id 区间把数据库中的评论回填到索引",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "chunk", Value: 200, Usage: "每批数量"},
					&cli.Int64Flag{Name: "from-id", Value: 1, Usage: "起始 id（含）"},
					&cli.Int64Flag{Name: "to-id", Usage: "结束 id（含），0 表示不限"},
				},
				Action: syncIndex,
			},
			{
				Name:  "token",
				Usage: "签发管理接口使用的 JWT",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "subject", Value: "esctl", Usage: "token 主体"},
				},
				Action: issueToken,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newIndexManager() (*infraES.IndexManager, error) {
	cfg := config.GetElasticsearch()
	if err := infraES.Init(cfg); err != nil {
		return nil, err
	}
	return infraES.NewIndexManager(infraES.Get(), cfg), nil
}

func createIndex(c *cli.Context) error {
	manager, err := newIndexManager()
	if err != nil {
		return err
	}
	defer infraES.Close()

	admin := service.NewIndexAdminService(manager, nil)
	if err := admin.CreateIndex(c.Context, c.Bool("force")); err != nil {
		return err
	}
	fmt.Printf("index %s ready, alias %s\n", manager.IndexName(), manager.AliasName())
	return nil
}

func syncIndex(c *cli.Context) error {
	manager, err := newIndexManager()
	if err != nil {
		return err
	}
	defer infraES.Close()

	if err := database.Init(&config.Get().Database); err != nil {
		return err
	}
	defer database.Close()

	admin := service.NewIndexAdminService(manager, repository.NewCommentRepository(database.Get()))
	res, err := admin.Sync(c.Context, c.Int("chunk"), c.Int64("from-id"), c.Int64("to-id"))
	if err != nil {
		return err
	}

	fmt.Printf("total=%d success=%d failed=%d\n", res.Total, res.Success, res.Failed)
	return nil
}

func issueToken(c *cli.Context) error {
	token, err := utils.GenerateToken(c.String("subject"), utils.RoleAdmin)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
