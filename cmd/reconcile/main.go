// reconcile 是离线协调入口：从 xlsx 工作簿或 csv 目录读取一个批次，
// 跑完整的协调流水线，并把诊断摘要打到日志。
// 和 HTTP 导入接口共用同一套引擎，适合定时任务和手工补数。
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"orgchart_go/internal/config"
	"orgchart_go/internal/ingest"
	"orgchart_go/internal/recon"
	"orgchart_go/internal/repository"
	"orgchart_go/pkg/database"
	"orgchart_go/pkg/log"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	filePath := flag.String("file", "", "xlsx 工作簿路径")
	dirPath := flag.String("dir", "", "csv 目录路径（按文件名识别各类行）")
	flag.Parse()

	if (*filePath == "") == (*dirPath == "") {
		fmt.Fprintln(os.Stderr, "usage: reconcile -file data.xlsx | -dir ./csv [-config configs/config.yaml]")
		os.Exit(2)
	}

	config.Init(*configPath)
	cfg := config.Conf

	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()

	database.InitMySQL(cfg.Database.MySQL.DSN)
	if err := database.RunMigrate(); err != nil {
		log.Fatal("Failed to run migrations", err)
		return
	}
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)

	var batch *recon.Batch
	var err error
	if *filePath != "" {
		f, openErr := os.Open(*filePath)
		if openErr != nil {
			log.Fatal("failed to open workbook", openErr)
			return
		}
		batch, err = ingest.ReadWorkbook(f)
		f.Close()
	} else {
		batch, err = ingest.LoadDir(*dirPath)
	}
	if err != nil {
		log.Fatal("failed to read input batch", err)
		return
	}

	runner := recon.NewRunner(
		repository.NewEmployeeRepository(database.DB),
		repository.NewPositionRepository(database.DB),
		repository.NewDimensionRepository(database.DB),
		repository.NewJobTitleLevelRepository(database.DB),
		repository.NewAssignmentRepository(database.DB),
		repository.NewManagerAliasRepository(database.DB),
		database.RDB,
	)

	report, runErr := runner.Run(context.Background(), batch)

	// 无论成败都打印完整报告，部分失败时的诊断同样有价值
	if report != nil {
		out, marshalErr := json.MarshalIndent(report, "", "  ")
		if marshalErr == nil {
			fmt.Println(string(out))
		}
	}
	if runErr != nil {
		log.Error("reconciliation run failed", runErr)
		os.Exit(1)
	}
}
