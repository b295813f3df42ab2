// mentor-match 命令行客户端
//
// 用法:
//
//	mentor-match-cli [-server URL] [-token-file PATH] <命令> [参数]
//
// 命令:
//
//	login <email> <password>     登录并保存会话
//	logout                       登出并清除会话
//	me                           查看当前用户
//	mentors [关键字]             导师列表（仅 mentee）
//	requests                     当前角色的匹配请求列表
//	send <mentor_id> [留言]      发起匹配请求（仅 mentee）
//	accept <request_id>          接受请求（仅 mentor）
//	reject <request_id>          拒绝请求（仅 mentor）
//	withdraw <request_id>        撤回请求（仅 mentee）
//	export [输出文件]            导出匹配请求历史 (.xlsx)
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"mentor-match/backend/internal/client"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "服务端地址")
	tokenFile := flag.String("token-file", defaultTokenPath(), "会话 Token 存储文件")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	storage := &client.FileTokenStorage{Path: *tokenFile}
	sess := client.NewSession(client.New(*serverURL), storage)

	ctx := context.Background()
	if err := sess.InitFromStorage(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "恢复会话失败: %v\n", err)
		os.Exit(1)
	}

	if err := run(ctx, sess, args); err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			fmt.Fprintf(os.Stderr, "失败: %s (错误码 %d)\n", apiErr.Message, apiErr.Code)
		} else {
			fmt.Fprintf(os.Stderr, "失败: %v\n", err)
		}
		os.Exit(1)
	}
}

func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mentor-match-token"
	}
	return filepath.Join(home, ".mentor-match", "token")
}

func run(ctx context.Context, sess *client.Session, args []string) error {
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "login":
		if len(rest) != 2 {
			return errors.New("用法: login <email> <password>")
		}
		if err := sess.Login(ctx, rest[0], rest[1]); err != nil {
			return err
		}
		fmt.Printf("已登录: %s (%s)\n", sess.User().Name, sess.User().Role)
		return nil

	case "logout":
		if err := sess.Logout(); err != nil {
			return err
		}
		fmt.Println("已登出")
		return nil

	case "me":
		u := sess.User()
		if u == nil {
			return client.ErrNotAuthenticated
		}
		fmt.Printf("%s <%s> 角色: %s\n", u.Name, u.Email, u.Role)
		if u.Bio != "" {
			fmt.Printf("简介: %s\n", u.Bio)
		}
		return nil

	case "mentors":
		search := ""
		if len(rest) > 0 {
			search = rest[0]
		}
		mentors, err := sess.API().ListMentors(ctx, search, "", "")
		if err != nil {
			return err
		}
		if len(mentors) == 0 {
			fmt.Println("暂无导师")
			return nil
		}
		for _, m := range mentors {
			fmt.Printf("%s  %s  %v\n", m.ID, m.Profile.Name, m.Profile.Skills)
		}
		return nil

	case "requests":
		reqs, err := sess.RefreshRequests(ctx)
		if err != nil {
			return err
		}
		if len(reqs) == 0 {
			fmt.Println("暂无匹配请求")
			return nil
		}
		for _, r := range reqs {
			fmt.Printf("%s  [%s]  mentor=%s mentee=%s  %s\n",
				r.ID, r.Status, r.MentorID, r.MenteeID, r.Message)
		}
		return nil

	case "send":
		if len(rest) < 1 {
			return errors.New("用法: send <mentor_id> [留言]")
		}
		message := ""
		if len(rest) > 1 {
			message = rest[1]
		}
		created, err := sess.SendRequest(ctx, rest[0], message)
		if err != nil {
			return err
		}
		fmt.Printf("已发起请求 %s (状态 %s)\n", created.ID, created.Status)
		return nil

	case "accept", "reject":
		if len(rest) != 1 {
			return fmt.Errorf("用法: %s <request_id>", cmd)
		}
		status := "accepted"
		if cmd == "reject" {
			status = "rejected"
		}
		decided, err := sess.Decide(ctx, rest[0], status)
		if err != nil {
			return err
		}
		fmt.Printf("请求 %s 已更新为 %s\n", decided.ID, decided.Status)
		return nil

	case "withdraw":
		if len(rest) != 1 {
			return errors.New("用法: withdraw <request_id>")
		}
		if err := sess.Withdraw(ctx, rest[0]); err != nil {
			return err
		}
		fmt.Println("已撤回")
		return nil

	case "export":
		data, filename, err := sess.API().ExportMatchingRequests(ctx)
		if err != nil {
			return err
		}
		out := filename
		if len(rest) > 0 {
			out = rest[0]
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return err
		}
		fmt.Printf("已导出 %s\n", out)
		return nil

	default:
		return fmt.Errorf("未知命令: %s", cmd)
	}
}
