package render

// Card templates shipped to the rendering service. Placeholders use the
// service's "{{ key }}" syntax and are filled in before upload.

const noteCardTemplate = `
<div style="width: 680px; padding: 20px; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'PingFang SC', 'Helvetica Neue', Arial, 'Noto Sans SC', 'Microsoft YaHei', sans-serif; background: linear-gradient(180deg,#ffffff 0%, #f7f9ff 100%); color: #1f2937; border-radius: 16px; border: 1px solid #e5e7eb; box-shadow: 0 10px 30px rgba(15,23,42,0.08);">
  <div style="display:flex; align-items:center; gap:10px; margin-bottom: 12px;">
    <div style="width:10px; height:10px; background:#3b82f6; border-radius:50%"></div>
    <div style="font-weight:700; font-size:18px; color:#111827">留言工单 {{ ticket }}</div>
  </div>

  <div style="display:grid; grid-template-columns: 1fr 1fr; gap: 12px; margin-bottom: 12px; font-size: 13px; color:#374151">
    <div><span style="color:#6b7280">来源平台：</span>{{ platform }}</div>
    <div><span style="color:#6b7280">来源群号：</span>{{ group_id }}</div>
    <div><span style="color:#6b7280">来源用户：</span>{{ sender_name }}</div>
    <div><span style="color:#6b7280">来源QQ：</span>{{ sender_id }}</div>
  </div>

  <div style="margin-top: 8px; background:#0b1020; color:#e5e7eb; border-radius:12px; padding:16px; font-size:14px; line-height:1.7; border: 1px solid #111827;">
    <div style="color:#93c5fd; font-size:12px; letter-spacing: .04em; text-transform:uppercase; margin-bottom:8px;">留言内容</div>
    <div style="white-space: pre-wrap;">{{ content }}</div>
  </div>

  <div style="margin-top: 16px; font-size:12px; color:#6b7280; display:flex; align-items:center; gap:6px;">
    <span>使用 /回复 {{ ticket }} 内容 进行回复</span>
  </div>
</div>
`

const replyCardTemplate = `
<div style="width: 680px; padding: 20px; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'PingFang SC', 'Helvetica Neue', Arial, 'Noto Sans SC', 'Microsoft YaHei', sans-serif; background: linear-gradient(180deg,#ffffff 0%, #f8fff9 100%); color: #1f2937; border-radius: 16px; border: 1px solid #e5e7eb; box-shadow: 0 10px 30px rgba(15,23,42,0.08);">
  <div style="display:flex; align-items:center; gap:10px; margin-bottom: 12px;">
    <div style="width:10px; height:10px; background:#10b981; border-radius:50%"></div>
    <div style="font-weight:700; font-size:18px; color:#111827">留言回复 工单 {{ ticket }}</div>
  </div>

  <div style="display:grid; grid-template-columns: 1fr 1fr; gap: 12px; margin-bottom: 12px; font-size: 13px; color:#374151">
    <div><span style="color:#6b7280">回复给：</span>{{ sender_name }} ({{ sender_id }})</div>
  </div>

  <div style="margin-top: 8px; background:#0b1020; color:#e5e7eb; border-radius:12px; padding:16px; font-size:14px; line-height:1.7; border: 1px solid #111827;">
    <div style="color:#86efac; font-size:12px; letter-spacing: .04em; text-transform:uppercase; margin-bottom:8px;">回复内容</div>
    <div style="white-space: pre-wrap;">{{ content }}</div>
  </div>

  <div style="margin-top: 16px; font-size:12px; color:#6b7280; display:flex; align-items:center; gap:6px;">
    <span>此回复将回送至原留言会话</span>
  </div>
</div>
`
